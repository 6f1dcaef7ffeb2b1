// Command authcore-admin bootstraps accounts and produces password hashes.
//
// Usage:
//
//	authcore-admin create-admin -dsn postgres://... -username root -email root@example.com
//	authcore-admin hash [-bcrypt] [-cost 12]
//
// Passwords are read from the terminal without echo, or as one line from
// stdin when it is not a terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "authcore-admin: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return fmt.Errorf("missing command")
	}

	in := newPrompter(stdin, stderr)
	switch args[0] {
	case "create-admin":
		return createAdmin(ctx, args[1:], in, stdout)
	case "hash":
		return hashPassword(args[1:], in, stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  authcore-admin create-admin -dsn DSN -username NAME -email ADDR [-migrate]")
	fmt.Fprintln(w, "  authcore-admin hash [-bcrypt] [-cost N]")
}
