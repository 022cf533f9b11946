package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
	"github.com/hirecrest/talentline/internal/services/pipeline/storage"
)

// PutOfferDocument upserts one offer document and fans the new state out to
// any subscribed listeners after the write commits.
func (s *Store) PutOfferDocument(ctx context.Context, doc domain.OfferDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	doc.CandidateID = strings.TrimSpace(doc.CandidateID)
	if doc.CandidateID == "" {
		return fmt.Errorf("candidate id is required")
	}
	if doc.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO offer_documents (candidate_id, sent, signed, sent_at, signed_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(candidate_id) DO UPDATE SET
		sent = excluded.sent,
		signed = excluded.signed,
		sent_at = excluded.sent_at,
		signed_at = excluded.signed_at,
		updated_at = excluded.updated_at
	`,
		doc.CandidateID,
		boolToInt(doc.Sent),
		boolToInt(doc.Signed),
		nullMillis(doc.SentAt),
		nullMillis(doc.SignedAt),
		toMillis(doc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put offer document: %w", err)
	}

	s.notifyOfferSubscribers(doc)
	return nil
}

// GetOfferDocument loads one offer document by candidate id.
func (s *Store) GetOfferDocument(ctx context.Context, candidateID string) (domain.OfferDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.OfferDocument{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.OfferDocument{}, fmt.Errorf("storage is not configured")
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return domain.OfferDocument{}, fmt.Errorf("candidate id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT candidate_id, sent, signed, sent_at, signed_at, updated_at
FROM offer_documents
WHERE candidate_id = ?
`, candidateID)

	var doc domain.OfferDocument
	var sent, signed int
	var sentAt, signedAt sql.NullInt64
	var updatedAt int64
	if err := row.Scan(&doc.CandidateID, &sent, &signed, &sentAt, &signedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OfferDocument{}, storage.ErrNotFound
		}
		return domain.OfferDocument{}, fmt.Errorf("get offer document: %w", err)
	}
	doc.Sent = sent != 0
	doc.Signed = signed != 0
	doc.SentAt = timePtr(sentAt)
	doc.SignedAt = timePtr(signedAt)
	doc.UpdatedAt = fromMillis(updatedAt)
	return doc, nil
}

// ListUnsignedOfferDocuments returns every offer document that went out but
// carries no signature yet. The candidate record only reflects what a
// listener has already merged, so resumption reads this aggregate instead.
func (s *Store) ListUnsignedOfferDocuments(ctx context.Context) ([]domain.OfferDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT candidate_id, sent, signed, sent_at, signed_at, updated_at
FROM offer_documents
WHERE sent = 1 AND signed = 0
ORDER BY candidate_id
`)
	if err != nil {
		return nil, fmt.Errorf("list unsigned offer documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.OfferDocument
	for rows.Next() {
		var doc domain.OfferDocument
		var sent, signed int
		var sentAt, signedAt sql.NullInt64
		var updatedAt int64
		if err := rows.Scan(&doc.CandidateID, &sent, &signed, &sentAt, &signedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan offer document row: %w", err)
		}
		doc.Sent = sent != 0
		doc.Signed = signed != 0
		doc.SentAt = timePtr(sentAt)
		doc.SignedAt = timePtr(signedAt)
		doc.UpdatedAt = fromMillis(updatedAt)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offer document rows: %w", err)
	}
	return docs, nil
}

// SubscribeOffer registers fn for updates to one candidate's offer document
// and, when a document already exists, delivers its current state before
// returning. A subscriber attached after the offer went out still converges
// on the stored snapshot. The returned function removes the subscription and
// is safe to call more than once.
func (s *Store) SubscribeOffer(candidateID string, fn func(domain.OfferDocument)) (func(), error) {
	if s == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return nil, fmt.Errorf("candidate id is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("subscriber callback is required")
	}

	s.subMu.Lock()
	subs, ok := s.offerSubs[candidateID]
	if !ok {
		subs = make(map[int]func(domain.OfferDocument))
		s.offerSubs[candidateID] = subs
	}
	s.nextSubID++
	subID := s.nextSubID
	subs[subID] = fn
	s.subMu.Unlock()

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if subs, ok := s.offerSubs[candidateID]; ok {
			delete(subs, subID)
			if len(subs) == 0 {
				delete(s.offerSubs, candidateID)
			}
		}
	}

	// A concurrent put may also deliver, but duplicate snapshots are safe:
	// subscribers fingerprint what they have already seen.
	doc, err := s.GetOfferDocument(context.Background(), candidateID)
	switch {
	case err == nil:
		fn(doc)
	case errors.Is(err, storage.ErrNotFound):
	default:
		unsubscribe()
		return nil, err
	}
	return unsubscribe, nil
}

// notifyOfferSubscribers delivers doc to a snapshot of subscribers outside
// the registry lock, so a callback may resubscribe or unsubscribe freely.
func (s *Store) notifyOfferSubscribers(doc domain.OfferDocument) {
	s.subMu.Lock()
	var callbacks []func(domain.OfferDocument)
	for _, fn := range s.offerSubs[doc.CandidateID] {
		callbacks = append(callbacks, fn)
	}
	s.subMu.Unlock()

	for _, fn := range callbacks {
		fn(doc)
	}
}
