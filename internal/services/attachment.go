package services

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Upload is one file received for an order.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type AttachmentService struct {
	base
	blobs    storage.Store
	maxBytes int64
}

func NewAttachmentService(db *gorm.DB, authz Authorizer, blobs storage.Store, maxBytes int64) *AttachmentService {
	return &AttachmentService{base: newBase(db, authz), blobs: blobs, maxBytes: maxBytes}
}

func (s *AttachmentService) List(ctx context.Context, orderID uint) ([]models.Attachment, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceAttachment); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requireOrder(db, orderID); err != nil {
		return nil, err
	}
	var atts []models.Attachment
	return atts, db.Where("order_id = ?", orderID).Order("id").Find(&atts).Error
}

// Upload stores the blob first and then the row; a failed insert removes the blob again.
func (s *AttachmentService) Upload(ctx context.Context, orderID uint, up Upload) (*models.Attachment, error) {
	if err := s.authorize(ctx, gate.ActionCreate, policy.ResourceAttachment); err != nil {
		return nil, err
	}
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(up.Filename), `\`, "/"))
	if name == "" || name == "." || name == "/" {
		return nil, invalid("file", "required")
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return nil, invalid("file", "file_too_large")
	}
	if err := requireOrder(s.db.WithContext(ctx), orderID); err != nil {
		return nil, err
	}

	key, err := s.blobs.Put(ctx, name, up.Body, up.Size, up.ContentType)
	if err != nil {
		return nil, err
	}
	a := models.Attachment{
		OrderID:      orderID,
		Filename:     name,
		Path:         key,
		ContentType:  up.ContentType,
		Size:         up.Size,
		UploadedByID: actorID(ctx),
	}
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&a).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, policy.ResourceAttachment, a.ID, "order %d file %q", orderID, name)
	})
	if err != nil {
		if rmErr := s.blobs.Remove(ctx, key); rmErr != nil {
			log.Printf("remove orphan blob %s: %v", key, rmErr)
		}
		return nil, err
	}
	return &a, nil
}

// Open returns the attachment row and its content. The caller closes the reader.
func (s *AttachmentService) Open(ctx context.Context, id uint) (*models.Attachment, io.ReadCloser, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourceAttachment); err != nil {
		return nil, nil, err
	}
	var a models.Attachment
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, nil, notFound(err)
	}
	rc, err := s.blobs.Open(ctx, a.Path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &a, rc, nil
}

// Delete removes the row, then the blob, and returns the owning order id.
func (s *AttachmentService) Delete(ctx context.Context, id uint) (uint, error) {
	if err := s.authorize(ctx, gate.ActionDelete, policy.ResourceAttachment); err != nil {
		return 0, err
	}
	var a models.Attachment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&a).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, policy.ResourceAttachment, id, "order %d file %q", a.OrderID, a.Filename)
	})
	if err != nil {
		return 0, err
	}
	if err := s.blobs.Remove(ctx, a.Path); err != nil {
		log.Printf("remove attachment blob %s: %v", a.Path, err)
	}
	return a.OrderID, nil
}
