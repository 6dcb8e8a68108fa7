/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/service"
)

// Result counts what Apply wrote.
type Result struct {
	Created         int
	Existing        int
	Sites           bool
	Classifications []string
}

// Apply writes the document into tenant: missing definitions are created,
// existing ones are left alone, then the sites schema and classifications
// are set. The document should pass Check first; the services reject
// anything it would have reported.
func Apply(ctx context.Context, log zerolog.Logger, doc *Document, tenant, userID string,
	attrs *service.AttributeService, schemas *service.SchemaService) (*Result, error) {

	var err error
	res := &Result{}
	access := attributes.Access{Op: attributes.OpCreate, Elevated: true}

	for _, def := range doc.Definitions {
		existing, err := attrs.Get(ctx, tenant, def.Key)
		if err != nil {
			return res, fmt.Errorf("failed to read attribute %s: %w", def.Key, err)
		}
		if existing != nil {
			res.Existing++
			continue
		}
		if _, err := attrs.Add(ctx, tenant, service.AddAttributeRequest{
			Key:      def.Key,
			DataType: def.DataType,
			Type:     def.Type,
		}, access); err != nil {
			return res, fmt.Errorf("failed to add attribute %s: %w", def.Key, err)
		}
		res.Created++
	}
	log.Info().Str("tenant", tenant).Int("created", res.Created).Int("existing", res.Existing).Msg("attributes applied")

	if doc.Sites != nil {
		if err := schemas.SetSitesSchema(ctx, tenant, sitesName(doc.Sites), doc.Sites, userID); err != nil {
			return res, fmt.Errorf("failed to set sites schema: %w", err)
		}
		res.Sites = true
	}

	var byName map[string]string
	for _, c := range doc.Classifications {
		id := c.ID
		if id == "" {
			if byName == nil {
				if byName, err = classificationIDs(ctx, tenant, schemas); err != nil {
					return res, err
				}
			}
			id = byName[c.Name]
		}
		rec, err := schemas.SetClassification(ctx, tenant, id, c.Name, c.Schema, userID)
		if err != nil {
			return res, fmt.Errorf("failed to set classification %s: %w", c.Name, err)
		}
		res.Classifications = append(res.Classifications, rec.DocumentID)
		log.Info().Str("tenant", tenant).Str("classification", c.Name).Str("id", rec.DocumentID).Msg("classification applied")
	}

	return res, nil
}

// classificationIDs maps the names of the tenant's classifications to their
// ids so a document without ids updates rather than duplicates them.
func classificationIDs(ctx context.Context, tenant string, schemas *service.SchemaService) (map[string]string, error) {
	out := map[string]string{}
	req := pagination.Request{Limit: pagination.MaxLimit}
	for {
		page, err := schemas.FindClassifications(ctx, tenant, req)
		if err != nil {
			return nil, fmt.Errorf("failed to list classifications: %w", err)
		}
		for _, c := range page.Items {
			out[c.Name] = c.DocumentID
		}
		if page.Next == "" {
			return out, nil
		}
		req = pagination.Request{Next: page.Next}
	}
}
