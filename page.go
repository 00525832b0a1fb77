package sitechat

// Page is a fetched web page.
type Page struct {
	URL   string
	Title string

	// Text is the text content of the page with markup removed.
	Text string

	// HTML is the page markup as served or as rendered by the browser.
	// May be empty if the fetcher does not expose it.
	HTML string

	// Links holds the href of every anchor on the page in document order,
	// exactly as written in the markup (possibly relative).
	Links []string
}
