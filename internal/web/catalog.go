package web

import (
	"encoding/json"
	"net/http"

	"github.com/peterkuimelis/goldfish/internal/catalog"
)

// CatalogInfo is the JSON representation of the action catalog for the
// /api/catalog endpoint.
type CatalogInfo struct {
	Name      string            `json:"name"`
	Actions   []catalog.Action  `json:"actions"`
	Responses catalog.Responses `json:"responses"`
	Summary   CatalogSummary    `json:"summary"`
}

// CatalogSummary counts pool entries by kind.
type CatalogSummary struct {
	Actions map[catalog.Kind]int `json:"actions"`
	Cast    map[catalog.Kind]int `json:"cast"`
	Attack  map[catalog.Kind]int `json:"attack"`
}

func countKinds(pool []catalog.Action) map[catalog.Kind]int {
	counts := make(map[catalog.Kind]int)
	for _, a := range pool {
		counts[a.Type]++
	}
	return counts
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.game.Catalog
	info := CatalogInfo{
		Name:      cat.Name,
		Actions:   cat.Actions,
		Responses: cat.Responses,
		Summary: CatalogSummary{
			Actions: countKinds(cat.Actions),
			Cast:    countKinds(cat.Responses.Cast),
			Attack:  countKinds(cat.Responses.Attack),
		},
	}
	writeJSON(w, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
