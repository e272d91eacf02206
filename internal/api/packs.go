package api

import (
	"bytes"
	"net/http"

	"github.com/kalambet/promptpilot/internal/pack"
)

const maxPackBodySize = 5 << 20 // 5MB

func handleImportPack(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxPackBodySize)
		defer r.Body.Close()

		p, err := pack.Parse(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid pack: %v", err)
			return
		}
		importPack(w, deps, p)
	}
}

func handleImportStarter(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importPack(w, deps, pack.Starter())
	}
}

func importPack(w http.ResponseWriter, deps Deps, p pack.Pack) {
	res, err := pack.Import(deps.Store, deps.OwnerID, p)
	if res.Created > 0 {
		deps.promptsChanged()
	}
	if err != nil {
		writeServiceError(w, "importing pack", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func handleExportPack(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prompts, err := deps.Store.ListPromptsByOwner(deps.OwnerID)
		if err != nil {
			writeServiceError(w, "exporting pack", err)
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = deps.OwnerID
		}

		var buf bytes.Buffer
		if err := pack.Encode(&buf, pack.FromPrompts(name, prompts)); err != nil {
			writeServiceError(w, "exporting pack", err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(buf.Bytes())
	}
}
