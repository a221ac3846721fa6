package service

import (
	"context"
	"log"

	"github.com/encoreapp/encore/internal/avatar"
	"github.com/encoreapp/encore/internal/queue"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/storage"
)

// Store interfaces are declared here, on the consumer side, so the cascade
// can be exercised against fakes.  The concrete repositories satisfy them.

type accountDeleter interface {
	FindByID(ctx context.Context, id uint64) (repository.Account, error)
	Delete(ctx context.Context, id uint64) error
}

type profileDeleter interface {
	FindByAccountID(ctx context.Context, accountID uint64) (repository.Profile, error)
	Delete(ctx context.Context, accountID uint64) error
}

type mediaDeleter interface {
	ListByAccountID(ctx context.Context, accountID uint64) ([]repository.MediaItem, error)
	DeleteByAccountID(ctx context.Context, accountID uint64) error
}

// AccountRemover deletes an account and everything it owns.  Backing files
// go first and best-effort, then rows child-to-parent, so a crash mid-way
// leaves at worst residual files, never child rows referencing a deleted
// credential.
type AccountRemover struct {
	Accounts accountDeleter
	Profiles profileDeleter
	Media    mediaDeleter
	Files    storage.BlobStore
	Audit    *AuditPublisher
}

// Remove deletes the target account.  It returns repository.ErrNotFound
// when no credential row exists.  File deletion failures (including files
// already absent) are logged and swallowed; row deletion failures surface
// immediately, before the credential row is touched.
func (r *AccountRemover) Remove(ctx context.Context, actorID, targetID uint64) error {
	if _, err := r.Accounts.FindByID(ctx, targetID); err != nil {
		return err
	}

	// 1. Best-effort file cleanup.  Only custom profile uploads are files
	// we own; catalog default avatars are shared and must stay.
	profile, err := r.Profiles.FindByAccountID(ctx, targetID)
	if err == nil && profile.ImagePath.Valid && avatar.IsCustomUpload(profile.ImagePath.String) {
		if ferr := r.Files.Delete(ctx, avatar.Resolve(profile.ImagePath.String, "")); ferr != nil {
			log.Printf("account remove: delete profile image failed: %v", ferr)
		}
	}
	media, err := r.Media.ListByAccountID(ctx, targetID)
	if err != nil {
		return err
	}
	for _, m := range media {
		if m.Path == "" {
			continue
		}
		if ferr := r.Files.Delete(ctx, m.Path); ferr != nil {
			log.Printf("account remove: delete media file failed: %v", ferr)
		}
	}

	// 2-4. Rows, child to parent.  The order is mandatory.
	if err := r.Media.DeleteByAccountID(ctx, targetID); err != nil {
		return err
	}
	if err := r.Profiles.Delete(ctx, targetID); err != nil {
		return err
	}
	if err := r.Accounts.Delete(ctx, targetID); err != nil {
		return err
	}

	_ = r.Audit.Publish(ctx, queue.AuditEvent{
		Kind:      queue.EventAccountDeleted,
		ActorID:   actorID,
		AccountID: targetID,
	})
	return nil
}
