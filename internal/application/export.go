package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ExportUsers writes every user as one JSON object per line, newest first,
// reading pageSize users at a time. It returns the number of users written.
func (s *Service) ExportUsers(ctx context.Context, w io.Writer, pageSize int) (int, error) {
	if pageSize <= 0 || pageSize > MaxListLimit {
		pageSize = MaxListLimit
	}
	enc := json.NewEncoder(w)
	written := 0
	for offset := 0; ; offset += pageSize {
		page, err := s.ListUsers(ctx, ListUsersQuery{Limit: pageSize, Offset: offset})
		if err != nil {
			return written, fmt.Errorf("list users at offset %d: %w", offset, err)
		}
		for _, u := range page.Data {
			if err := enc.Encode(u); err != nil {
				return written, err
			}
			written++
		}
		if len(page.Data) < pageSize || offset+pageSize >= page.Meta.Total {
			return written, nil
		}
	}
}
