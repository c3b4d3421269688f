package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avolkovs/clipstream/internal/clips/catalog"
	"github.com/avolkovs/clipstream/internal/clips/identity"
	"github.com/avolkovs/clipstream/internal/clips/models"
	"github.com/avolkovs/clipstream/internal/clips/repository"
	"github.com/avolkovs/clipstream/internal/clips/thumbs"
	"github.com/avolkovs/clipstream/internal/clips/upload"
)

// localBlobs is an in-process blob store for handler tests.
type localBlobs struct {
	objects map[string][]byte
}

func (b *localBlobs) Put(ctx context.Context, path string, r io.Reader, size int64, onProgress func(float64)) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if onProgress != nil {
		onProgress(1)
	}
	b.objects[path] = data
	return nil
}

func (b *localBlobs) ResolveURL(ctx context.Context, path string) (string, error) {
	return "https://cdn.local/" + path, nil
}

func (b *localBlobs) Delete(ctx context.Context, path string) error {
	delete(b.objects, path)
	return nil
}

type fixedThumbs struct{}

func (fixedThumbs) Candidates(ctx context.Context, video io.Reader) ([]thumbs.Candidate, error) {
	if _, err := io.Copy(io.Discard, video); err != nil {
		return nil, err
	}
	return []thumbs.Candidate{
		{Data: []byte("frame-1"), ContentType: "image/png"},
		{Data: []byte("frame-2"), ContentType: "image/png"},
	}, nil
}

func newServer(t *testing.T) (*repository.MemoryRepository, http.Handler) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	cat := catalog.New(repo, zerolog.Nop())
	orch := upload.New(&localBlobs{objects: map[string][]byte{}}, cat,
		identity.NewStatic(&identity.User{ID: "u1", DisplayName: "User One"}), zerolog.Nop())
	return repo, NewRouter(New(cat, orch, fixedThumbs{}, zerolog.Nop()))
}

func multipartUpload(t *testing.T, title string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="video"; filename="holiday.mp4"`},
		"Content-Type":        {"video/mp4"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("video-bytes"))
	require.NoError(t, err)

	part, err = w.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="thumbnail"; filename="still.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)

	require.NoError(t, w.WriteField("title", title))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadClip_EndToEnd(t *testing.T) {
	repo, srv := newServer(t)

	body, contentType := multipartUpload(t, "my holiday clip")
	req := httptest.NewRequest(http.MethodPost, "/clips", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp ClipResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "my holiday clip", resp.Title)
	require.Equal(t, "u1", resp.OwnerID)
	require.Contains(t, resp.PrimaryURL, "https://cdn.local/clips/")
	require.Contains(t, resp.ThumbnailURL, "https://cdn.local/screenshots/")

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Equal(t, resp.PrimaryURL, stored.PrimaryAssetURL)
}

func TestUploadClip_ShortTitleRejected(t *testing.T) {
	_, srv := newServer(t)

	body, contentType := multipartUpload(t, "ab")
	req := httptest.NewRequest(http.MethodPost, "/clips", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGlobalFeed_PagesThroughCursor(t *testing.T) {
	repo, srv := newServer(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		c := models.Clip{
			ID:                uuid.New(),
			OwnerID:           "u1",
			Title:             "some clip",
			PrimaryAssetURL:   "u",
			ThumbnailAssetURL: "u",
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), &c))
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clips", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page1 FeedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page1))
	require.Len(t, page1.Clips, 6)
	require.NotEmpty(t, page1.NextCursor)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clips?cursor="+page1.NextCursor, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page2 FeedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page2))
	require.Len(t, page2.Clips, 2)
	require.Empty(t, page2.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, c := range append(page1.Clips, page2.Clips...) {
		require.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

func TestUpdateClip_ValidationAndNotFound(t *testing.T) {
	repo, srv := newServer(t)

	c := models.Clip{
		ID:                uuid.New(),
		OwnerID:           "u1",
		Title:             "original title",
		PrimaryAssetURL:   "u",
		ThumbnailAssetURL: "u",
		CreatedAt:         time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), &c))

	// Too-short title: rejected, stored title unchanged.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/clips/"+c.ID.String(), strings.NewReader(`{"title":"ab"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, "original title", stored.Title)

	// Unknown id: 404.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/clips/"+uuid.NewString(), strings.NewReader(`{"title":"new title"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClip(t *testing.T) {
	repo, srv := newServer(t)

	body, contentType := multipartUpload(t, "my holiday clip")
	req := httptest.NewRequest(http.MethodPost, "/clips", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ClipResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clips/"+resp.ID.String(), nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := repo.GetByID(context.Background(), resp.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestThumbnails(t *testing.T) {
	_, srv := newServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("video", "holiday.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("video-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/clips/thumbnails", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var candidates []ThumbnailCandidate
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&candidates))
	require.Len(t, candidates, 2)
	require.Equal(t, []byte("frame-1"), candidates[0].Data)
}
