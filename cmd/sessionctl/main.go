// sessionctl exercises the session authority from the command line: probe
// the identity provider, attempt logins, seed local accounts, and manage
// passwords and MFA enrollment.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caseboard/sessionkit/internal/authority/app"
	"github.com/caseboard/sessionkit/internal/authority/domain"
	"github.com/caseboard/sessionkit/internal/authority/idp"
	"github.com/caseboard/sessionkit/internal/authority/service"
	"github.com/caseboard/sessionkit/pkg/cryptox"
	"github.com/caseboard/sessionkit/pkg/idx"
	"github.com/caseboard/sessionkit/pkg/slogx"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := app.LoadConfig()
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close()

	// CLI navigation can only print the URL the browser would load.
	application.Connector().Navigate = func(url string) {
		fmt.Println("navigate:", url)
	}

	ctx := slogx.WithContext(context.Background(), application.Logger())
	ctx = slogx.WithOperationID(ctx, idx.New().String())

	var cmdErr error
	switch os.Args[1] {
	case "probe":
		cmdErr = runProbe(ctx, application)
	case "login":
		cmdErr = runLogin(ctx, application, os.Args[2:])
	case "seed":
		cmdErr = runSeed(ctx, application, os.Args[2:])
	case "passwd":
		cmdErr = runPasswd(ctx, application, os.Args[2:])
	case "enroll-mfa":
		cmdErr = runEnrollMFA(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		log.Fatalf("%s: %v", os.Args[1], cmdErr)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: sessionctl <command> [args]

commands:
  probe                                     check identity provider reachability
  login <email> <password> [tenant-hint]    attempt a local login and print the session
  seed <email> <password> <name> <role-label> <tenant-id> <tenant-name>
                                            create a local credential record
  passwd <email> <tenant-id> <current> <new>
                                            change a local account password
  enroll-mfa <email>                        generate a TOTP enrollment`)
}

func runProbe(ctx context.Context, application *app.Application) error {
	application.Authority().Initialize(ctx, idp.Callback{})
	if application.Authority().ProviderReachable() {
		fmt.Println("identity provider reachable")
	} else {
		fmt.Println("identity provider unreachable")
	}
	return nil
}

func runLogin(ctx context.Context, application *app.Application, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected <email> <password> [tenant-hint]")
	}
	hint := ""
	if len(args) > 2 {
		hint = args[2]
	}

	authority := application.Authority()
	authority.Initialize(ctx, idp.Callback{})
	authority.Login(ctx, args[0], args[1], hint)

	state := authority.State()
	printState(state)

	if state.Phase == domain.PhaseAwaitingMFACode {
		fmt.Print("one-time code: ")
		var code string
		if _, err := fmt.Scanln(&code); err != nil {
			return err
		}
		authority.CompleteMFA(ctx, code)
		printState(authority.State())
	}
	return nil
}

func printState(state domain.SessionState) {
	fmt.Println("phase:", state.Phase)
	if state.Err != "" {
		fmt.Println("error:", state.Err)
	}
	if state.User != nil {
		fmt.Printf("user: %s (%s) roles=%v tenant=%s\n",
			state.User.DisplayName, state.User.Email, state.User.Roles, state.User.TenantName)
	}
	for _, choice := range state.TenantChoices {
		fmt.Printf("tenant choice: %s (%s)\n", choice.TenantName, choice.TenantID)
	}
}

func runSeed(ctx context.Context, application *app.Application, args []string) error {
	if len(args) != 6 {
		return fmt.Errorf("expected <email> <password> <name> <role-label> <tenant-id> <tenant-name>")
	}
	if application.Store() == nil {
		return fmt.Errorf("no database configured, set SESSION_DATABASE_FILE")
	}

	hash, err := cryptox.HashSecret(args[1])
	if err != nil {
		return err
	}

	now := time.Now()
	cred := domain.Credential{
		ID:          idx.New().String(),
		Email:       args[0],
		SecretHash:  hash,
		DisplayName: args[2],
		RoleLabel:   args[3],
		TenantID:    args[4],
		TenantName:  args[5],
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := application.Store().Credentials().CreateCredential(ctx, cred); err != nil {
		return err
	}
	fmt.Println("created credential", cred.ID)
	return nil
}

func runPasswd(ctx context.Context, application *app.Application, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("expected <email> <tenant-id> <current> <new>")
	}
	if err := application.Passwords().Change(ctx, args[0], args[1], args[2], args[3]); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

func runEnrollMFA(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <email>")
	}
	secret, url, err := service.EnrollTOTP("caseboard", args[0])
	if err != nil {
		return err
	}
	fmt.Println("secret:", secret)
	fmt.Println("url:", url)
	fmt.Println("store the secret on the credential record to require a code at login")
	return nil
}
