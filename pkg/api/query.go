package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/adfharrison1/go-search/pkg/config"
	"github.com/adfharrison1/go-search/pkg/domain"
)

// checkQueryFields rejects any query parameter outside allowed
func checkQueryFields(values url.Values, allowed ...string) error {
	for key := range values {
		known := false
		for _, name := range allowed {
			if key == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown query parameter %q: %w", key, domain.ErrBadRequest)
		}
	}
	return nil
}

// parseBrowseQuery reads offset, limit and attributesToRetrieve
func parseBrowseQuery(values url.Values) (domain.BrowseQuery, error) {
	query := domain.BrowseQuery{
		Offset: config.DefaultRetrieveDocumentsOffset,
		Limit:  config.DefaultRetrieveDocumentsLimit,
	}
	if err := checkQueryFields(values, "offset", "limit", "attributesToRetrieve"); err != nil {
		return query, err
	}

	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return query, fmt.Errorf("offset must be a non-negative integer, got %q: %w", raw, domain.ErrBadRequest)
		}
		query.Offset = offset
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return query, fmt.Errorf("limit must be a positive integer, got %q: %w", raw, domain.ErrBadRequest)
		}
		query.Limit = limit
	}
	query.AttributesToRetrieve = domain.ParseAttributesToRetrieve(values.Get("attributesToRetrieve"))
	return query, nil
}
