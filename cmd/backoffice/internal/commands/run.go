package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/edusuite/backoffice/internal/guard"
	"github.com/edusuite/backoffice/internal/identity"
	"github.com/edusuite/backoffice/internal/identity/tokenfile"
	"github.com/edusuite/backoffice/internal/layout"
	"github.com/edusuite/backoffice/internal/logger"
	"github.com/edusuite/backoffice/internal/route"
	"github.com/edusuite/backoffice/internal/session"
	"github.com/edusuite/backoffice/internal/site"
)

type RunCmd struct {
	IdentityURL string        `help:"base URL of the identity service; uses the built-in dev backend when empty" default:"" env:"BACKOFFICE_IDENTITY_URL"`
	TokenFile   string        `help:"path of the persisted session token file" default:"" env:"BACKOFFICE_TOKEN_FILE"`
	CacheDir    string        `help:"HTTP cache directory for identity calls" default:"" env:"BACKOFFICE_CACHE_DIR"`
	SessionTTL  time.Duration `help:"dev backend resume token TTL" default:"168h" env:"BACKOFFICE_SESSION_TTL"`
	Overlay     string        `help:"optional YAML overlay extending the route table" default:"" env:"BACKOFFICE_SITE_OVERLAY"`
}

// shell bundles the wired navigation core for the interactive loop.
type shell struct {
	sessions *session.Store
	nav      *guard.Navigator
	comp     *layout.Composer
	tokens   *tokenfile.Store
	backend  *identity.Memory // nil when talking to a hosted identity service
	client   *identity.Client // nil when using the built-in backend
}

func (c *RunCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting back-office shell")

	tree, err := c.buildTree()
	if err != nil {
		return err
	}

	sh := &shell{comp: layout.NewComposer()}

	var verifier session.Verifier
	if c.IdentityURL != "" {
		client, err := identity.NewClient(c.IdentityURL,
			identity.WithHTTPClient(identity.NewCachingHTTPClient(c.CacheDir)))
		if err != nil {
			return err
		}
		sh.client = client
		verifier = client
	} else {
		backend, err := identity.NewMemory(identity.WithTokenTTL(c.SessionTTL))
		if err != nil {
			return err
		}
		if err := seedDevAccounts(backend); err != nil {
			return err
		}
		log.Info().Msg("Using built-in dev identity backend (password: dev-password)")
		sh.backend = backend
		verifier = backend
	}

	sh.tokens, err = tokenfile.NewStore(c.TokenFile)
	if err != nil {
		return err
	}
	persisted, err := sh.tokens.Load()
	if err != nil && !errors.Is(err, tokenfile.ErrNoToken) {
		log.Warn().Err(err).Msg("Ignoring unreadable token file")
	}

	sh.sessions = session.New(verifier, persisted)
	sh.nav = guard.New(tree, sh.sessions, sh.comp)
	defer sh.nav.Close()

	// Settle the boot-time resolving state off the input loop; the guard
	// holds any deep link pending until this lands.
	go sh.sessions.Resume(ctx)

	// Boot at the root public node.
	sh.show(sh.nav.Navigate("/"))

	return sh.loop(ctx)
}

func (c *RunCmd) buildTree() (*route.Tree, error) {
	root := site.Routes()
	if c.Overlay != "" {
		data, err := os.ReadFile(c.Overlay)
		if err != nil {
			return nil, fmt.Errorf("failed to read overlay: %w", err)
		}
		overlay, err := site.ParseOverlay(data)
		if err != nil {
			return nil, err
		}
		if err := overlay.Apply(root); err != nil {
			return nil, err
		}
	}
	return route.NewTree(root)
}

func (s *shell) loop(ctx context.Context) error {
	fmt.Println(`Navigate with a path (e.g. /dashboard/cms); commands: login <email> <password>, logout, whoami, render, quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "whoami":
			s.whoami()
		case line == "render":
			_ = s.comp.Render(os.Stdout)
		case line == "logout":
			s.sessions.Logout(ctx)
			if err := s.tokens.Clear(); err != nil {
				fmt.Println("warning:", err)
			}
			fmt.Println("logged out")
			_ = s.comp.Render(os.Stdout)
		case strings.HasPrefix(line, "login "):
			s.login(ctx, line)
		case strings.HasPrefix(line, "/"):
			s.show(s.nav.Navigate(line))
		default:
			fmt.Println("unknown command")
		}
	}
}

func (s *shell) login(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		fmt.Println("usage: login <email> <password>")
		return
	}

	sess, err := s.sessions.Login(ctx, session.Credentials{Email: fields[1], Password: fields[2]})
	if err != nil {
		fmt.Println("login failed:", err)
		return
	}
	fmt.Printf("logged in as %s (%s)\n", fields[1], roleLabel(sess.Role()))

	s.persistToken(fields[1])
	_ = s.comp.Render(os.Stdout)
}

// persistToken stores the identity-issued resume token so the session
// survives a restart.
func (s *shell) persistToken(email string) {
	var token string
	switch {
	case s.client != nil:
		token = s.client.Token()
	case s.backend != nil:
		issued, err := s.backend.IssueToken(email)
		if err != nil {
			fmt.Println("warning: could not issue resume token:", err)
			return
		}
		token = issued
	}
	if token == "" {
		return
	}
	if err := s.tokens.Save(token); err != nil {
		fmt.Println("warning: could not persist session:", err)
	}
}

func (s *shell) whoami() {
	sess := s.sessions.Current()
	switch sess.Status {
	case session.StatusAuthenticated:
		fmt.Printf("%s (%s) role=%s\n", sess.Principal.Profile["name"], sess.Principal.ID, roleLabel(sess.Principal.Role))
	default:
		fmt.Println(sess.Status)
	}
}

func (s *shell) show(res guard.Result) {
	switch {
	case res.State == guard.StatePending:
		fmt.Printf("%s: session still resolving, hold on\n", res.Requested)
		return
	case res.Redirected():
		fmt.Printf("%s: %s, redirected to %s\n", res.Requested, res.State, res.Rendered)
	default:
		fmt.Printf("%s: %s\n", res.Requested, res.State)
	}
	_ = s.comp.Render(os.Stdout)
}

func roleLabel(r session.Role) string {
	if r == session.RoleNone {
		return "no elevated role"
	}
	return string(r)
}
