package collection

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithds/zenithds/internal/domain"
	collectionrepo "github.com/zenithds/zenithds/internal/repository/collection"
	"github.com/zenithds/zenithds/internal/repository/csvfile"
	queryuc "github.com/zenithds/zenithds/internal/usecase/query"
)

type mockRepo struct {
	headers   [][]string
	sampleErr error
	writeErr  error
	removeErr error
	sampleN   int
	written   []string
	removed   []string
}

func (m *mockRepo) SampleHeaders(_ context.Context, _ string, n int) ([][]string, error) {
	m.sampleN = n
	return m.headers, m.sampleErr
}

func (m *mockRepo) Write(_ context.Context, collection, filename string, _ []string, _ [][]string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, collection+"/"+filename)
	return nil
}

func (m *mockRepo) Remove(_ context.Context, collection, filename string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, collection+"/"+filename)
	return nil
}

func TestInsert_Valid(t *testing.T) {
	repo := &mockRepo{headers: [][]string{{"id", "val"}, {"id", "val"}}}
	svc := New(repo).WithHeaderSample(5)

	err := svc.Insert(context.Background(), "main", "b.csv", []string{"id", "val"}, [][]string{{"3", "z"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"main/b.csv"}, repo.written)
	assert.Equal(t, 5, repo.sampleN)
}

func TestInsert_DefaultSample(t *testing.T) {
	repo := &mockRepo{}
	require.NoError(t, New(repo).WithHeaderSample(0).Insert(context.Background(), "main", "a.csv", []string{"k"}, nil))
	assert.Equal(t, DefaultHeaderSample, repo.sampleN)
}

func TestInsert_Validation(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		filename   string
		header     []string
		rows       [][]string
	}{
		{"empty collection", "", "a.csv", []string{"k"}, nil},
		{"empty filename", "main", "", []string{"k"}, nil},
		{"empty header", "main", "a.csv", nil, nil},
		{"empty header cell", "main", "a.csv", []string{"id", ""}, [][]string{{"1", "x"}}},
		{"row length", "main", "a.csv", []string{"k", "v"}, [][]string{{"1"}}},
		{"path in filename", "main", "../a.csv", []string{"k"}, nil},
		{"dot collection", "..", "a.csv", []string{"k"}, nil},
		{"backslash", "main", `a\b.csv`, []string{"k"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{sampleErr: errors.New("must not be called")}
			err := New(repo).Insert(context.Background(), tt.collection, tt.filename, tt.header, tt.rows)
			assert.ErrorIs(t, err, domain.ErrQuery)
			assert.Empty(t, repo.written)
		})
	}
}

func TestInsert_HeaderMismatch(t *testing.T) {
	repo := &mockRepo{headers: [][]string{{"id", "val"}}}
	err := New(repo).Insert(context.Background(), "main", "b.csv", []string{"id", "other"}, [][]string{{"3", "z"}})
	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.Empty(t, repo.written)

	// order matters
	err = New(repo).Insert(context.Background(), "main", "b.csv", []string{"val", "id"}, nil)
	assert.ErrorIs(t, err, domain.ErrQuery)
}

func TestInsert_RepoErrors(t *testing.T) {
	ioErr := domain.FileSystemError("open", fs.ErrPermission)

	err := New(&mockRepo{sampleErr: ioErr}).Insert(context.Background(), "main", "a.csv", []string{"k"}, nil)
	assert.ErrorIs(t, err, fs.ErrPermission)

	err = New(&mockRepo{writeErr: ioErr}).Insert(context.Background(), "main", "a.csv", []string{"k"}, nil)
	assert.ErrorIs(t, err, domain.ErrFileSystem)
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	require.NoError(t, New(repo).Delete(context.Background(), "main", "a.csv"))
	assert.Equal(t, []string{"main/a.csv"}, repo.removed)

	err := New(repo).Delete(context.Background(), "main", "")
	assert.ErrorIs(t, err, domain.ErrQuery)
}

func TestRender(t *testing.T) {
	svc := New(&mockRepo{})

	got, err := svc.Render(context.Background(), []byte(",\nid,val\n1,x\n2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "val"}, got.Header)
	assert.Equal(t, [][]string{{"1", "x"}}, got.Rows)

	_, err = svc.Render(context.Background(), []byte("a\n\"open\n"))
	assert.ErrorIs(t, err, domain.ErrCSV)
}

// Write path against a real collection directory.

func newWritePath(t *testing.T) (*Service, *queryuc.Service, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "main")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("id,val\n1,x\n2,y\n"), 0o600))

	repo, err := collectionrepo.New(collectionrepo.Config{Root: root})
	require.NoError(t, err)
	return New(repo), queryuc.New(repo, csvfile.NewScanner()), dir
}

func TestScenario_InsertHeaderDisagrees(t *testing.T) {
	svc, _, dir := newWritePath(t)

	err := svc.Insert(context.Background(), "main", "b.csv", []string{"id", "other"}, [][]string{{"3", "z"}})
	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.NoFileExists(t, filepath.Join(dir, "b.csv"))
}

func TestScenario_DeleteMissing(t *testing.T) {
	svc, _, _ := newWritePath(t)

	err := svc.Delete(context.Background(), "main", "missing.csv")
	assert.ErrorIs(t, err, domain.ErrFileSystem)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestScenario_InsertThenSelect(t *testing.T) {
	svc, query, _ := newWritePath(t)
	ctx := context.Background()

	rows := [][]string{{"3", "z"}, {"4", "w"}}
	require.NoError(t, svc.Insert(ctx, "main", "b.csv", []string{"id", "val"}, rows))

	got, err := query.Select(ctx, "main", nil, nil)
	require.NoError(t, err)
	assert.Subset(t, got.Rows, rows)
	assert.Len(t, got.Rows, 4)
}

func TestScenario_InsertCreatesCollection(t *testing.T) {
	svc, query, dir := newWritePath(t)
	ctx := context.Background()

	require.NoError(t, svc.Insert(ctx, "fresh", "a.csv", []string{"k"}, [][]string{{"v"}}))
	assert.FileExists(t, filepath.Join(filepath.Dir(dir), "fresh", "a.csv"))

	got, err := query.Select(ctx, "fresh", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"v"}}, got.Rows)
}

func TestScenario_InsertEmptyHeaderCellRejected(t *testing.T) {
	svc, query, dir := newWritePath(t)
	ctx := context.Background()

	err := svc.Insert(ctx, "fresh", "a.csv", []string{"id", ""}, [][]string{{"1", "x"}, {"2", "y"}})
	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dir), "fresh", "a.csv"))

	// every inserted row reads back under the inserted header
	header := []string{"id", "val"}
	rows := [][]string{{"1", "x"}, {"2", "y"}}
	require.NoError(t, svc.Insert(ctx, "fresh", "a.csv", header, rows))
	got, err := query.Select(ctx, "fresh", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, header, got.Header)
	assert.ElementsMatch(t, rows, got.Rows)
}
