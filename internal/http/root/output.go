package root

// GetOutput is the plain-text response for GET /.
type GetOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte `contentType:"text/plain"`
}
