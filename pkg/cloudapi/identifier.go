package cloudapi

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// resourceKind selects which record fields identify a resource.
type resourceKind int

const (
	kindMachine resourceKind = iota
	kindDataset
	kindImage
	kindPackage
	kindNetwork
)

func (k resourceKind) String() string {
	switch k {
	case kindMachine:
		return "machine"
	case kindDataset:
		return "dataset"
	case kindImage:
		return "image"
	case kindPackage:
		return "package"
	case kindNetwork:
		return "network"
	default:
		return "resource"
	}
}

// Identifier names a remote resource. Accessors accept either a bare
// identifier (ID) or a previously fetched record (FromRecord) from which
// the identifying field is extracted; typed resource values such as
// *Machine or Image are Identifiers for themselves.
type Identifier interface {
	identify(kind resourceKind) (string, error)
}

// ID wraps a bare identifier string.
func ID(s string) Identifier {
	return rawID(s)
}

type rawID string

func (r rawID) identify(resourceKind) (string, error) {
	if r == "" {
		return "", errors.New("cloudapi: empty identifier")
	}
	return string(r), nil
}

// FromRecord extracts the identifier from a decoded resource record. The
// field consulted depends on the resource: machines, images, and networks
// use "id"; datasets fall back from "id" to "urn"; packages prefer "name".
func FromRecord(record map[string]interface{}) Identifier {
	return recordID(record)
}

type recordID map[string]interface{}

func (r recordID) identify(kind resourceKind) (string, error) {
	var fields []string
	switch kind {
	case kindDataset:
		fields = []string{"id", "urn"}
	case kindPackage:
		fields = []string{"name", "id"}
	default:
		fields = []string{"id"}
	}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("cloudapi: record has no usable %s identifier", kind)
}

// resolveIdentifier reduces an Identifier to a plain string at the call
// boundary. Machine identifiers are additionally checked to be UUIDs,
// which is the only form the API accepts for them.
func resolveIdentifier(id Identifier, kind resourceKind) (string, error) {
	if id == nil {
		return "", fmt.Errorf("cloudapi: missing %s identifier", kind)
	}
	s, err := id.identify(kind)
	if err != nil {
		return "", err
	}
	if kind == kindMachine {
		if _, err := uuid.Parse(s); err != nil {
			return "", fmt.Errorf("cloudapi: machine identifier %q is not a UUID", s)
		}
	}
	return s, nil
}
