package storage

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const assetVersion = 1

// Asset is the on-disk envelope around one stored pack.
type Asset struct {
	Version    uint            `json:"version"`
	Identifier ident.Id        `json:"id"`
	Spec       json.RawMessage `json:"spec"`
}

func (a *Asset) Id() ident.Id {
	return a.Identifier
}

func (a *Asset) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}
	if a.Version > assetVersion {
		el.Add(fmt.Errorf("version %d is newer than supported version %d", a.Version, assetVersion))
	}

	if a.Identifier.IsNil() {
		el.Add(fmt.Errorf("id must be set"))
	}

	if len(a.Spec) == 0 || !json.Valid(a.Spec) {
		el.Add(fmt.Errorf("spec must be valid json"))
	}

	return el.Err()
}
