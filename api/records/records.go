// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package records serves the persisted operation records.
package records

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/api/restutil"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/recorddb"
)

type Records struct {
	db    *recorddb.RecordDB
	limit uint64
}

// New creates the handler group. limit caps the page size of one query.
func New(db *recorddb.RecordDB, limit uint64) *Records {
	return &Records{db, limit}
}

func (r *Records) parseFilter(req *http.Request) (*recorddb.Filter, error) {
	query := req.URL.Query()
	filter := &recorddb.Filter{
		Kind:  query.Get("kind"),
		Limit: r.limit,
	}
	if query.Get("order") == "desc" {
		filter.Order = recorddb.DESC
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "offset"))
		}
		filter.Offset = offset
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "limit"))
		}
		if limit > r.limit {
			return nil, restutil.BadRequest(errors.Errorf("limit exceeds maximum of %v", r.limit))
		}
		filter.Limit = limit
	}
	if addr, ok := mux.Vars(req)["address"]; ok {
		parsed, err := lockstake.ParseAddress(addr)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "address"))
		}
		filter.Account = &parsed
	}
	return filter, nil
}

func (r *Records) handleQuery(w http.ResponseWriter, req *http.Request) error {
	filter, err := r.parseFilter(req)
	if err != nil {
		return err
	}
	records, err := r.db.Query(req.Context(), filter)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*recorddb.StoredRecord{}
	}
	return restutil.WriteJSON(w, records)
}

func (r *Records) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /records").
		HandlerFunc(restutil.WrapHandlerFunc(r.handleQuery))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /records/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(r.handleQuery))
}
