package repository

import (
	"fmt"
	"strings"
)

// JobListingParams son los parámetros opcionales de GET /all-jobs.
type JobListingParams struct {
	Category string
	Search   string
	Sort     string
}

// JobListingQuery es el predicado y las opciones de orden ya traducidos a SQL.
type JobListingQuery struct {
	Conditions []string
	Args       []any
	OrderBy    string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BuildJobListingQuery traduce filtro, búsqueda y orden a un predicado parametrizado.
// Los tres parámetros son independientes y se combinan con AND.
func BuildJobListingQuery(p JobListingParams) JobListingQuery {
	var q JobListingQuery

	if search := strings.TrimSpace(p.Search); search != "" {
		q.Args = append(q.Args, likeEscaper.Replace(search))
		q.Conditions = append(q.Conditions,
			fmt.Sprintf(`job_title ILIKE '%%' || $%d || '%%' ESCAPE '\'`, len(q.Args)))
	}

	if category := strings.TrimSpace(p.Category); category != "" {
		q.Args = append(q.Args, category)
		q.Conditions = append(q.Conditions, fmt.Sprintf("category = $%d", len(q.Args)))
	}

	switch strings.ToLower(strings.TrimSpace(p.Sort)) {
	case "asc":
		q.OrderBy = "deadline ASC NULLS LAST"
	case "desc":
		q.OrderBy = "deadline DESC NULLS LAST"
	}

	return q
}

// Where devuelve la cláusula WHERE (vacía si no hay condiciones).
func (q JobListingQuery) Where() string {
	if len(q.Conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.Conditions, " AND ")
}

// Order devuelve la cláusula ORDER BY; sin orden pedido queda el de la base.
func (q JobListingQuery) Order() string {
	if q.OrderBy == "" {
		return ""
	}
	return " ORDER BY " + q.OrderBy
}
