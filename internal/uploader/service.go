// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package uploader

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"themehub/internal/identity"
	"themehub/internal/models"
	"themehub/internal/store"
	"themehub/internal/themecfg"
)

// ThemeExtension is the only accepted artifact file extension.
const ThemeExtension = ".fptheme"

// ThemeStore is the subset of theme persistence the workflow needs.
type ThemeStore interface {
	HashExists(contentHash string) (bool, error)
	CountThemesOwnedBy(ownerID string) (int, error)
	Create(t *models.Theme) (*models.Theme, error)
}

// UserStore resolves the owner's quota.
type UserStore interface {
	GetUser(id string) (*models.User, error)
}

// BlobStore stores theme artifacts and rendered previews.
type BlobStore interface {
	UploadArtifact(ctx context.Context, key string, data []byte) error
	UploadPreview(ctx context.Context, key string, data []byte) error
	DeleteArtifact(ctx context.Context, key string) error
	DeletePreview(ctx context.Context, key string) error
}

// Renderer turns a parsed theme config into preview image bytes.
type Renderer interface {
	Render(ctx context.Context, cfg *themecfg.Config) ([]byte, error)
}

// Service drives the submission state machine. Drafts live in process
// memory keyed by submitter; calls for the same submitter are expected
// to arrive sequentially (one dialog per account).
type Service struct {
	themes      ThemeStore
	users       UserStore
	blobs       BlobStore
	renderer    Renderer
	maxFileSize int64

	mu     sync.Mutex
	drafts map[string]*Draft
}

// New creates a submission service. maxFileSize caps accepted artifact
// bytes.
func New(themes ThemeStore, users UserStore, blobs BlobStore, renderer Renderer, maxFileSize int64) *Service {
	return &Service{
		themes:      themes,
		users:       users,
		blobs:       blobs,
		renderer:    renderer,
		maxFileSize: maxFileSize,
		drafts:      make(map[string]*Draft),
	}
}

// Start opens a new submission dialog for the owner. Rejected with
// CodeQuotaExceeded when the owner's stored themes already fill their
// slots; no draft is created in that case. An existing incomplete draft
// for the same owner is silently discarded (last draft wins) and its
// stored artifact removed.
func (s *Service) Start(ctx context.Context, ownerID string) Result {
	if s.blobs == nil {
		return rejected(CodeInternal, 0, "storage not configured")
	}

	user, err := s.users.GetUser(ownerID)
	if err != nil {
		return rejected(CodeInternal, 0, "lookup failed")
	}
	if user == nil {
		return rejected(CodeInternal, 0, "unknown account")
	}

	count, err := s.themes.CountThemesOwnedBy(ownerID)
	if err != nil {
		return rejected(CodeInternal, 0, "lookup failed")
	}
	if count >= user.ThemeSlots {
		return rejected(CodeQuotaExceeded, 0, "all theme slots are in use")
	}

	s.mu.Lock()
	old := s.drafts[ownerID]
	s.drafts[ownerID] = &Draft{
		OwnerID:   ownerID,
		Stage:     StageAwaitingFile,
		StartedAt: time.Now(),
	}
	s.mu.Unlock()

	if old != nil {
		s.discardBlobs(ctx, old.ContentKey, "")
	}

	return accepted(StageAwaitingFile)
}

// SubmitFile validates and stores the uploaded artifact. On any
// rejection the draft stays in StageAwaitingFile so the submitter can
// try another file. On acceptance the raw bytes are not retained; the
// draft advances holding only the artifact key, hash, and parsed config.
func (s *Service) SubmitFile(ctx context.Context, ownerID, filename string, data []byte) Result {
	draft, res := s.draftAt(ownerID, StageAwaitingFile)
	if draft == nil {
		return res
	}

	if !strings.EqualFold(filepath.Ext(filename), ThemeExtension) {
		return rejected(CodeInvalidFormat, draft.Stage, "expected a "+ThemeExtension+" file")
	}
	if int64(len(data)) > s.maxFileSize {
		return rejected(CodeTooLarge, draft.Stage, "file exceeds the size limit")
	}

	hash := identity.ContentHash(data)
	exists, err := s.themes.HashExists(hash)
	if err != nil {
		return rejected(CodeInternal, draft.Stage, "lookup failed")
	}
	if exists {
		return rejected(CodeDuplicateContent, draft.Stage, "this theme is already stored")
	}

	cfg, err := themecfg.Parse(data)
	if err != nil {
		var verr *themecfg.ValidationError
		if errors.As(err, &verr) {
			return rejected(CodeInvalidStructure, draft.Stage, verr.Reason)
		}
		return rejected(CodeInvalidStructure, draft.Stage, "file is not a valid theme")
	}

	key := "themes/" + uuid.NewString() + ThemeExtension
	if err := s.blobs.UploadArtifact(ctx, key, data); err != nil {
		slog.Error("artifact upload failed", "owner", ownerID, "error", err)
		return rejected(CodeInternal, draft.Stage, "storage unavailable")
	}

	remaining := s.remainingSlots(ownerID)

	s.mu.Lock()
	draft.ContentKey = key
	draft.ContentHash = hash
	draft.Config = cfg
	draft.Stage = StageAwaitingName
	s.mu.Unlock()

	out := accepted(StageAwaitingName)
	out.RemainingSlots = remaining
	return out
}

// SubmitName accepts any non-empty name, stored verbatim.
func (s *Service) SubmitName(ownerID, text string) Result {
	draft, res := s.draftAt(ownerID, StageAwaitingName)
	if draft == nil {
		return res
	}
	if strings.TrimSpace(text) == "" {
		return rejected(CodeEmptyName, draft.Stage, "name must not be empty")
	}

	s.mu.Lock()
	draft.Name = text
	draft.Stage = StageAwaitingDescription
	s.mu.Unlock()

	return accepted(StageAwaitingDescription)
}

// SubmitDescription accepts any text, including empty, stored verbatim.
func (s *Service) SubmitDescription(ownerID, text string) Result {
	draft, res := s.draftAt(ownerID, StageAwaitingDescription)
	if draft == nil {
		return res
	}

	s.mu.Lock()
	draft.Description = text
	draft.Stage = StageAwaitingVisibility
	s.mu.Unlock()

	return accepted(StageAwaitingVisibility)
}

// SubmitVisibility finalizes the submission: it renders the preview,
// stores it, and persists the theme row in one atomic create. Anything
// other than "public" or "private" is rejected without state change.
// Finalization failures discard the draft and clean up stored blobs;
// the submitter must restart.
func (s *Service) SubmitVisibility(ctx context.Context, ownerID, choice string) Result {
	draft, res := s.draftAt(ownerID, StageAwaitingVisibility)
	if draft == nil {
		return res
	}

	visibility, err := models.ParseVisibility(choice)
	if err != nil {
		return rejected(CodeInvalidChoice, draft.Stage, "choose public or private")
	}

	preview, err := s.renderer.Render(ctx, draft.Config)
	if err != nil {
		slog.Error("preview render failed", "owner", ownerID, "error", err)
		s.discardDraft(ctx, ownerID, draft, "")
		return Result{Code: CodeRenderFailed, Reason: "could not render a preview"}
	}

	previewKey := "previews/" + uuid.NewString() + ".jpg"
	if err := s.blobs.UploadPreview(ctx, previewKey, preview); err != nil {
		slog.Error("preview upload failed", "owner", ownerID, "error", err)
		s.discardDraft(ctx, ownerID, draft, "")
		return Result{Code: CodeInternal, Reason: "storage unavailable"}
	}

	theme, err := s.themes.Create(&models.Theme{
		OwnerID:     ownerID,
		Name:        draft.Name,
		Description: draft.Description,
		Visibility:  visibility,
		ContentKey:  draft.ContentKey,
		ContentHash: draft.ContentHash,
		PreviewKey:  previewKey,
	})
	if errors.Is(err, store.ErrDuplicateContent) {
		// Another submission claimed the same content hash between the
		// early dedup check and commit.
		s.discardDraft(ctx, ownerID, draft, previewKey)
		return Result{Code: CodeStorageConflict, Reason: "this theme was stored by someone else first"}
	}
	if err != nil {
		slog.Error("theme create failed", "owner", ownerID, "error", err)
		s.discardDraft(ctx, ownerID, draft, previewKey)
		return Result{Code: CodeInternal, Reason: "storage unavailable"}
	}

	s.mu.Lock()
	delete(s.drafts, ownerID)
	s.mu.Unlock()

	return Result{Code: CodeOK, Theme: theme, Preview: preview}
}

// Cancel discards the owner's draft, if any, and removes its stored
// artifact. Reports whether a draft existed.
func (s *Service) Cancel(ctx context.Context, ownerID string) bool {
	s.mu.Lock()
	draft := s.drafts[ownerID]
	delete(s.drafts, ownerID)
	s.mu.Unlock()

	if draft == nil {
		return false
	}
	s.discardBlobs(ctx, draft.ContentKey, "")
	return true
}

// ActiveStage reports the owner's current draft stage.
func (s *Service) ActiveStage(ownerID string) (Stage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[ownerID]
	if !ok {
		return 0, false
	}
	return draft.Stage, true
}

// draftAt fetches the owner's draft and checks it is at the expected
// stage. On mismatch the second return value carries the rejection.
func (s *Service) draftAt(ownerID string, want Stage) (*Draft, Result) {
	s.mu.Lock()
	draft, ok := s.drafts[ownerID]
	s.mu.Unlock()

	if !ok {
		return nil, Result{Code: CodeNoActiveUpload, Reason: "no upload in progress"}
	}
	if draft.Stage != want {
		return nil, rejected(CodeWrongStage, draft.Stage, "expected "+draft.Stage.String())
	}
	return draft, Result{}
}

// remainingSlots reports how many themes the owner can still store after
// the in-flight submission completes. Best effort; used for messaging
// only.
func (s *Service) remainingSlots(ownerID string) int {
	user, err := s.users.GetUser(ownerID)
	if err != nil || user == nil {
		return 0
	}
	count, err := s.themes.CountThemesOwnedBy(ownerID)
	if err != nil {
		return 0
	}
	if remaining := user.ThemeSlots - count - 1; remaining > 0 {
		return remaining
	}
	return 0
}

// discardDraft removes the draft and cleans up its stored blobs.
func (s *Service) discardDraft(ctx context.Context, ownerID string, draft *Draft, previewKey string) {
	s.mu.Lock()
	delete(s.drafts, ownerID)
	s.mu.Unlock()
	s.discardBlobs(ctx, draft.ContentKey, previewKey)
}

// discardBlobs removes orphaned blobs, best effort. Failures leave
// unreferenced objects behind, which is harmless.
func (s *Service) discardBlobs(ctx context.Context, contentKey, previewKey string) {
	if s.blobs == nil {
		return
	}
	if contentKey != "" {
		if err := s.blobs.DeleteArtifact(ctx, contentKey); err != nil {
			slog.Warn("orphaned artifact not removed", "key", contentKey, "error", err)
		}
	}
	if previewKey != "" {
		if err := s.blobs.DeletePreview(ctx, previewKey); err != nil {
			slog.Warn("orphaned preview not removed", "key", previewKey, "error", err)
		}
	}
}
