package mapping

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

const defaultAuditPageSize = 20

// ListAuditsResponse is one page of the audit trail.
type ListAuditsResponse struct {
	Items    []entity.IngestAudit `json:"items"`
	Total    int64                `json:"total"`
	PageNo   int32                `json:"pageNo"`
	PageSize int32                `json:"pageSize"`
}

// ListAuditQueryFromValues reads filter, order_by, page_no and page_size.
func ListAuditQueryFromValues(values url.Values) (*repository.ListAuditQuery, error) {
	pageNo, err := int32Param(values, "page_no", 1)
	if err != nil {
		return nil, err
	}
	pageSize, err := int32Param(values, "page_size", defaultAuditPageSize)
	if err != nil {
		return nil, err
	}
	return &repository.ListAuditQuery{
		Pagination: repository.Pagination{PageNo: pageNo, PageSize: pageSize},
		FilterOrder: repository.FilterOrder{
			Filter:  strings.TrimSpace(values.Get("filter")),
			OrderBy: strings.TrimSpace(values.Get("order_by")),
		},
	}, nil
}

func int32Param(values url.Values, name string, def int32) (int32, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, entity.ValidationError("invalid %s %q", name, raw)
	}
	return int32(v), nil
}
