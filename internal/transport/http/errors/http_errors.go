package errors

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QuotaError is the payload for exhausted daily allowances. The flat
// limit/used pair plus upgrade_required gives clients a stable
// machine-readable reason to show the paywall.
type QuotaError struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	Limit           int    `json:"limit"`
	Used            int    `json:"used"`
	UpgradeRequired bool   `json:"upgrade_required"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
