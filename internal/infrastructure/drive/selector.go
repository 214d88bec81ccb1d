package drive

import (
	"log/slog"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/core/ports"
)

// Selector maps a document category to the gateway holding the right
// credential class. Categories without an explicit class fall back to
// the default gateway.
type Selector struct {
	byClass      map[string]ports.StorageGateway
	classFor     map[domain.DocumentCategory]string
	defaultClass string
}

func NewSelector(
	byClass map[string]ports.StorageGateway,
	classFor map[domain.DocumentCategory]string,
	defaultClass string,
) *Selector {
	return &Selector{
		byClass:      byClass,
		classFor:     classFor,
		defaultClass: defaultClass,
	}
}

func (s *Selector) ForCategory(category domain.DocumentCategory) ports.StorageGateway {
	class, ok := s.classFor[category]
	if !ok {
		class = s.defaultClass
	}
	gw, ok := s.byClass[class]
	if !ok {
		slog.Warn("unknown_credential_class", "category", string(category), "class", class)
		gw = s.byClass[s.defaultClass]
	}
	return gw
}
