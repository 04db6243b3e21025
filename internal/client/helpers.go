package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pressroom-io/papi/pkg/papi"
)

// queryValues renders optional query parameters for list calls.
func queryValues(params *papi.QueryParams) url.Values {
	if params == nil {
		return nil
	}

	return params.ToValues()
}

// decodeAttrs decodes a single-record response body.
func decodeAttrs(body []byte) (papi.Attrs, error) {
	var attrs papi.Attrs

	err := json.Unmarshal(body, &attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return attrs, nil
}

// materializeAll wraps raw list records in typed handles through the
// factory, deriving each member path from its uid attribute.
func materializeAll[T any](base, uidKey string, records []papi.Attrs, factory papi.Factory[T]) ([]T, error) {
	members := make([]T, 0, len(records))

	for _, record := range records {
		path, err := papi.MemberPath(base, record, uidKey)
		if err != nil {
			return nil, err
		}

		member, err := factory(path, record)
		if err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return members, nil
}
