// Package storage defines the persistence boundary for pipeline records.
// Backends implement the domain store interfaces over these sentinels.
package storage

import (
	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
)

// ErrNotFound indicates the requested record does not exist. It aliases the
// domain sentinel so both layers agree through errors.Is.
var ErrNotFound = domain.ErrRecordNotFound

// Store is the full persistence surface a pipeline backend provides.
type Store interface {
	domain.Store
	domain.OfferDocumentStore
	domain.CohortStore
	domain.OfferWatcher

	Close() error
}
