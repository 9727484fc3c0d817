package admin

import (
	"context"
	"strconv"
	"strings"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/section"
)

// Form field names.
const (
	FieldNonce      = "ucf_section_nonce"
	FieldStylesheet = section.MetaStylesheet
	FieldJavaScript = section.MetaJavaScript
)

// Form is the submitted edit form. url.Values satisfies it.
type Form interface {
	Get(key string) string
	Has(key string) bool
}

// MetaSaver writes the attachment references of a section.
type MetaSaver struct {
	repo   *section.Repository
	store  section.Store
	nonces *Nonces
	logger logging.Logger
}

// NewMetaSaver creates a MetaSaver.
func NewMetaSaver(repo *section.Repository, store section.Store, nonces *Nonces, logger logging.Logger) *MetaSaver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &MetaSaver{repo: repo, store: store, nonces: nonces, logger: logger.WithComponent("admin")}
}

// Nonce issues a form nonce for postID.
func (m *MetaSaver) Nonce(postID int64) string {
	return m.nonces.Create(SaveAction, postID)
}

// Save stores the submitted attachment references of postID. It does
// nothing when postID is not a section or the nonce is missing or invalid.
// Values that are not attachment ids are saved as 0 and absent fields
// clear the reference. Only store failures are returned.
func (m *MetaSaver) Save(ctx context.Context, postID int64, form Form) (bool, error) {
	if _, err := m.repo.FindByID(ctx, postID); err != nil {
		if errors.IsNotFound(err) {
			m.logger.Debug(ctx, "ignoring save for non-section post", "post", postID)
			return false, nil
		}
		return false, err
	}

	if !form.Has(FieldNonce) || !m.nonces.Verify(form.Get(FieldNonce), SaveAction, postID) {
		m.logger.Warn(ctx, errors.NewAuthorizationError(errors.ErrCodeInvalidNonce, "nonce missing or invalid"),
			"section asset save rejected", "post", postID)
		return false, nil
	}

	for _, key := range []string{FieldStylesheet, FieldJavaScript} {
		value := ""
		if form.Has(key) {
			value = strconv.FormatInt(attachmentID(form.Get(key)), 10)
		}
		if err := m.store.SetMeta(ctx, postID, key, value); err != nil {
			return false, err
		}
	}

	m.logger.Info(ctx, "section assets saved", "post", postID)
	return true, nil
}

// attachmentID reads the leading integer of v. Anything unparseable or
// negative is 0.
func attachmentID(v string) int64 {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	id, err := strconv.ParseInt(v[:end], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
