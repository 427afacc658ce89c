package session

// RequestMeta is what the request tells us about the client at login time.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Location  string
}
