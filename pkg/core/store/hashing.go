package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"dcfanalyst/pkg/models"
)

// InputHash fingerprints a run's inputs. Two runs with the same hash must
// produce byte-identical results — the engine is deterministic — so the
// hash doubles as an idempotence audit key across stored runs.
func InputHash(snap models.FinancialSnapshot, base models.Assumptions) (string, error) {
	payload := struct {
		Snapshot    models.FinancialSnapshot `json:"snapshot"`
		Assumptions models.Assumptions       `json:"assumptions"`
	}{snap, base}

	// encoding/json marshals struct fields in declaration order, so the
	// serialization is canonical for fixed types.
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to hash inputs: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
