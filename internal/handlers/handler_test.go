// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared in-memory fakes and a request helper
// for the handler tests. The fakes satisfy both the handler interfaces
// and the uploader's, so one fixture drives the whole API.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"time"

	"testing"

	"themehub/internal/identity"
	"themehub/internal/models"
	"themehub/internal/store"
)

// fakeDB is an in-memory stand-in for the user and theme stores.
type fakeDB struct {
	users  map[string]*models.User
	themes map[int64]*models.Theme
	nextID int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: make(map[string]*models.User), themes: make(map[int64]*models.Theme)}
}

func (f *fakeDB) addUser(id string, slots int) {
	f.users[id] = &models.User{ID: id, DisplayName: id, ThemeSlots: slots, CreatedAt: time.Now()}
}

func (f *fakeDB) addTheme(owner, name string, v models.Visibility) *models.Theme {
	f.nextID++
	t := &models.Theme{
		ID:          f.nextID,
		PublicID:    identity.NewPublicID(),
		OwnerID:     owner,
		Name:        name,
		Description: "desc",
		Visibility:  v,
		ContentKey:  "themes/fake.fptheme",
		ContentHash: identity.ContentHash([]byte(name)),
		PreviewKey:  "previews/fake.jpg",
		CreatedAt:   time.Now(),
	}
	f.themes[t.ID] = t
	return t
}

// UserStore + middleware.AccountStore + uploader.UserStore.

func (f *fakeDB) UpsertUser(id, displayName string) error {
	if _, ok := f.users[id]; !ok {
		f.users[id] = &models.User{ID: id, DisplayName: displayName, ThemeSlots: models.DefaultThemeSlots}
	}
	return nil
}

func (f *fakeDB) GetUser(id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeDB) IsBanned(id string) (bool, error) {
	u := f.users[id]
	return u != nil && u.IsBanned, nil
}

func (f *fakeDB) SetBanStatus(id string, banned bool) error {
	if u := f.users[id]; u != nil {
		u.IsBanned = banned
	}
	return nil
}

func (f *fakeDB) GrantSlots(id string, count int) error {
	if u := f.users[id]; u != nil {
		u.ThemeSlots += count
	}
	return nil
}

// ThemeStore + uploader.ThemeStore.

func (f *fakeDB) HashExists(hash string) (bool, error) {
	for _, t := range f.themes {
		if t.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) CountThemesOwnedBy(ownerID string) (int, error) {
	count := 0
	for _, t := range f.themes {
		if t.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) Create(t *models.Theme) (*models.Theme, error) {
	if ok, _ := f.HashExists(t.ContentHash); ok {
		return nil, store.ErrDuplicateContent
	}
	f.nextID++
	t.ID = f.nextID
	t.PublicID = identity.NewPublicID()
	t.CreatedAt = time.Now()
	f.themes[t.ID] = t
	return t, nil
}

func (f *fakeDB) ListThemesOwnedBy(ownerID string) ([]models.Theme, error) {
	var out []models.Theme
	for _, t := range f.themes {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeDB) GetThemeByID(id int64) (*models.Theme, error) {
	return f.themes[id], nil
}

func (f *fakeDB) GetThemeByPublicID(publicID string) (*models.Theme, error) {
	for _, t := range f.themes {
		if t.PublicID == publicID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) DeleteTheme(id int64, ownerID string) (*models.Theme, error) {
	t := f.themes[id]
	if t == nil || t.OwnerID != ownerID {
		return nil, nil
	}
	delete(f.themes, id)
	return t, nil
}

func (f *fakeDB) AdminDeleteTheme(id int64) (*models.Theme, error) {
	t := f.themes[id]
	if t == nil {
		return nil, nil
	}
	delete(f.themes, id)
	return t, nil
}

func (f *fakeDB) SetVisibility(id int64, ownerID string, v models.Visibility) (bool, error) {
	t := f.themes[id]
	if t == nil || t.OwnerID != ownerID {
		return false, nil
	}
	t.Visibility = v
	return true, nil
}

func (f *fakeDB) ListPublicThemes(offset, limit int) ([]models.PublicTheme, error) {
	var all []models.PublicTheme
	for _, t := range f.themes {
		if t.Visibility != models.VisibilityPublic {
			continue
		}
		owner := ""
		if u := f.users[t.OwnerID]; u != nil {
			owner = u.DisplayName
		}
		all = append(all, models.PublicTheme{
			ID: t.ID, PublicID: t.PublicID, Name: t.Name,
			Description: t.Description, OwnerName: owner, PreviewKey: t.PreviewKey,
		})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeDB) CountPublicThemes() (int, error) {
	count := 0
	for _, t := range f.themes {
		if t.Visibility == models.VisibilityPublic {
			count++
		}
	}
	return count, nil
}

// fakeBlobs satisfies the handler and uploader blob interfaces.
type fakeBlobs struct {
	objects map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) UploadArtifact(_ context.Context, key string, data []byte) error {
	f.objects[key] = data
	return nil
}

func (f *fakeBlobs) UploadPreview(_ context.Context, key string, data []byte) error {
	f.objects[key] = data
	return nil
}

func (f *fakeBlobs) DeleteArtifact(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) DeletePreview(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) PreviewURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeBlobs) ArtifactURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/" + key + "?signed", nil
}

// fakeCache records catalog cache traffic.
type fakeCache struct {
	pages       map[string][]byte
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	payload, ok := f.pages[key]
	return payload, ok
}

func (f *fakeCache) Set(_ context.Context, key string, payload []byte) {
	f.pages[key] = payload
}

func (f *fakeCache) InvalidateAll(_ context.Context) {
	f.pages = make(map[string][]byte)
	f.invalidated++
}

// decodeBody decodes a JSON response body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return body
}

// jsonRequest builds a request with a JSON body and the account header.
func jsonRequest(method, target, account string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account-ID", account)
	}
	return req
}

// fileRequest builds a multipart upload request for the dialog.
func fileRequest(t *testing.T, target, account, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if account != "" {
		req.Header.Set("X-Account-ID", account)
	}
	return req
}
