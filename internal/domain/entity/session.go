package entity

// LaunchOptions are the parameters used to start a profile browser.
type LaunchOptions struct {
	ProfileID              string
	ExecPath               string
	Display                string
	WindowWidth            int
	WindowHeight           int
	Headless               bool
	ExtraArgs              []string
	WriteCookiesFromServer bool
}

// SandboxArgs are passed to every profile browser.
var SandboxArgs = []string{"--no-sandbox", "--disable-setuid-sandbox"}

// ProxyAuth holds the credentials the browser answers proxy auth challenges with.
type ProxyAuth struct {
	Username string
	Password string
}
