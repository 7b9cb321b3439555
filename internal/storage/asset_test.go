package storage

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-testutil"
)

func TestAsset_Validate(t *testing.T) {
	tests := map[string]struct {
		asset  Asset
		expErr string
	}{
		"valid": {
			asset: Asset{Version: 1, Identifier: ident.New(), Spec: json.RawMessage(`{"name":"x"}`)},
		},
		"missing version": {
			asset:  Asset{Identifier: ident.New(), Spec: json.RawMessage(`{}`)},
			expErr: "version must be set",
		},
		"future version": {
			asset:  Asset{Version: 2, Identifier: ident.New(), Spec: json.RawMessage(`{}`)},
			expErr: "newer than supported",
		},
		"nil id": {
			asset:  Asset{Version: 1, Spec: json.RawMessage(`{}`)},
			expErr: "id must be set",
		},
		"empty spec": {
			asset:  Asset{Version: 1, Identifier: ident.New()},
			expErr: "spec must be valid json",
		},
		"broken spec": {
			asset:  Asset{Version: 1, Identifier: ident.New(), Spec: json.RawMessage(`{"name":`)},
			expErr: "spec must be valid json",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}
