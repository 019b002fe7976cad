package email

// Message is one outbound email. Notification sends carry a single To
// address; HTMLBody and TextBody are both set so clients without HTML
// rendering still get the content.
type Message struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}
