package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/password"
)

// hashPassword prints an Argon2id hash with the default engine parameters,
// or a bcrypt hash for legacy fixtures.
func hashPassword(args []string, in *prompter, out io.Writer) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	useBcrypt := fs.Bool("bcrypt", false, "produce a legacy bcrypt hash")
	cost := fs.Int("cost", 0, "bcrypt cost; 0 selects the library default")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := in.password("Password")
	if err != nil {
		return err
	}

	var encoded string
	if *useBcrypt {
		b, err := password.NewBcrypt(*cost)
		if err != nil {
			return err
		}
		encoded, err = b.Hash(pw)
		if err != nil {
			return err
		}
	} else {
		h, err := password.NewArgon2(argonConfig(authcore.DefaultConfig()))
		if err != nil {
			return err
		}
		encoded, err = h.Hash(pw)
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(out, encoded)
	return err
}

func argonConfig(cfg authcore.Config) password.Config {
	return password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.PasswordPolicy.MaxLength,
	}
}
