package sitechat

import "context"

// Document is the unit a crawl produces: the extracted text of one page
// paired with the metadata used for citations downstream.
type Document struct {
	PageContent string           `json:"pageContent"`
	Metadata    DocumentMetadata `json:"metadata"`
}

// DocumentMetadata identifies the page a Document was extracted from.
type DocumentMetadata struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Metadata.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	return nil
}

// DocumentStore persists the documents of one crawl as a batch.
// Saved documents become visible only after Commit. Abort discards them.
type DocumentStore interface {
	Save(ctx context.Context, doc *Document) error
	Commit() error
	Abort() error
}
