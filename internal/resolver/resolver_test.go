package resolver_test

import (
	"testing"

	"hql/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r, err := resolver.New("file:///work/project")
	require.NoError(t, err)
	assert.Equal(t, "/work/project", r.Root())

	for _, base := range []string{"src/main.hql", "/work/project/src/main.hql", "file:///work/project/src/./main.hql"} {
		f, err := r.Resolve(base)
		require.NoError(t, err, base)
		assert.Equal(t, "file:///work/project/src/main.hql", f.URI, base)
		assert.Equal(t, "/work/project/src/main.hql", f.AbsolutePath, base)
		assert.Equal(t, "src/main.hql", f.RelativePath, base)
		assert.True(t, f.Inside(), base)
	}

	f, err := r.Resolve("/elsewhere/x.hql")
	require.NoError(t, err)
	assert.False(t, f.Inside())

	_, err = r.Resolve("")
	assert.Error(t, err)
}

func TestURIConversion(t *testing.T) {
	path, err := resolver.URIToPath("file:///tmp/with%20space.hql")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/with space.hql", path)
	assert.Equal(t, "file:///tmp/with%20space.hql", resolver.PathToURI(path))

	_, err = resolver.URIToPath("untitled:Untitled-1")
	assert.Error(t, err)
}
