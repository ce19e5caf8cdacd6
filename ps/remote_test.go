package ps

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectScheme(t *testing.T) {
	tests := map[string]locationScheme{
		"s3://bucket/key":    schemeS3,
		"S3://bucket/key":    schemeS3,
		"https://host/a.sql": schemeHTTPS,
		"http://host/a.sql":  schemeHTTP,
		"file:///tmp/a.sql":  schemeFile,
		"scripts/seed.sql":   schemeLocal,
		"/absolute/path.sql": schemeLocal,
	}
	for location, expected := range tests {
		assert.Equal(t, expected, detectScheme(location), location)
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://data/dumps/today.sql")
	require.NoError(t, err)
	assert.Equal(t, "data", bucket)
	assert.Equal(t, "dumps/today.sql", key)

	for _, url := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := parseS3URL(url)
		assert.Error(t, err, url)
	}
}

func TestLocalReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql")
	ctx := context.Background()

	writer, err := OpenWriter(ctx, path, nil)
	require.NoError(t, err)
	_, err = io.WriteString(writer, "SELECT * FROM t;\n")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader, err := OpenReader(ctx, "file://"+path, nil)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t;\n", string(content))
}

func TestHTTPReader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.sql" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "COMMIT;")
	}))
	defer server.Close()

	reader, err := OpenReader(context.Background(), server.URL+"/seed.sql", nil)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, "COMMIT;", string(content))

	_, err = OpenReader(context.Background(), server.URL+"/missing.sql", nil)
	assert.Error(t, err)

	_, err = OpenWriter(context.Background(), server.URL+"/out.sql", nil)
	assert.Error(t, err)
}

func TestOpenReaderUsesOsOpen(t *testing.T) {
	original := osOpen
	defer func() { osOpen = original }()

	var opened string
	osOpen = func(path string) (io.ReadCloser, error) {
		opened = path
		return nil, os.ErrNotExist
	}

	_, err := OpenReader(context.Background(), "file:///data/seed.sql", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "/data/seed.sql", opened)
}
