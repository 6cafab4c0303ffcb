package gateway

import "net/url"

// Result views are server-owned pages; the client only builds their URLs.

func (c *Client) ResultURL(id string) string {
	return join(c.config.BaseURL, "transcription", id)
}

func (c *Client) EditURL(id string) string {
	return join(c.config.BaseURL, "transcription", id, "edit")
}

func (c *Client) PDFURL(id string) string {
	return join(c.config.BaseURL, "transcription", id, "pdf")
}

func join(base string, elem ...string) string {
	for i, e := range elem {
		elem[i] = url.PathEscape(e)
	}
	u, err := url.JoinPath(base, elem...)
	if err != nil {
		return base
	}
	return u
}
