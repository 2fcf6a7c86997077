package main

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"emberchain/go-node/internal/bootstrap/keyconfig"
	"emberchain/go-node/internal/keys"
	"emberchain/go-node/internal/keystore"
	"emberchain/go-node/internal/platform/secretlog"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(secretlog.WrapHandler(slog.NewJSONHandler(os.Stderr, nil)))
	slog.SetDefault(logger)

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "generate":
		runGenerate(args)
	case "derive":
		runDerive(args)
	case "list":
		runList(args)
	case "inspect":
		runInspect(args)
	case "sign":
		runSign(args)
	case "verify":
		runVerify(args)
	case "recover":
		runRecover(args)
	case "version":
		fmt.Printf("emberkey version=%s commit=%s build_date=%s\n", version, commit, buildDate)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: emberkey <command> [flags]

commands:
  generate  create a new key and store it
  derive    derive a key from a bip39 mnemonic and store it
  list      list stored account ids
  inspect   show key type, public key and account id for a key
  sign      sign a message with a stored key
  verify    verify a signature against a public key
  recover   recover the secp256k1 public key from a signature
  version   print version and exit`)
}

func openStore(configPath string) *keystore.Store {
	cfg := keyconfig.LoadFromPath(configPath)
	return keystore.NewStore(cfg.KeyDir, cfg.KDF)
}

func parseKeyTypeFlag(raw string, configPath string) keys.KeyType {
	if strings.TrimSpace(raw) == "" {
		return keyconfig.LoadFromPath(configPath).DefaultAlgorithm
	}
	kt, err := keys.ParseKeyType(raw)
	if err != nil {
		failf("unknown key type %q", raw)
	}
	return kt
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	keyType := fs.String("type", "", "key type: ed25519 | secp256k1 | rsa2048")
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	passphrase := fs.String("passphrase", "", "passphrase for the key file (empty stores plain)")
	mustParse(fs, args)

	kt := parseKeyTypeFlag(*keyType, *configPath)
	sk, err := keys.GenerateSecretKey(kt)
	if err != nil {
		failf("generate %s key: %v", kt, err)
	}
	st := openStore(*configPath)
	id, err := st.Save(sk, *passphrase)
	if err != nil {
		failf("save key: %v", err)
	}
	slog.Info("key generated", "account_id", id, "key_type", kt.String(), "encrypted", *passphrase != "")
	writeStdoutf("%s\n%s\n", id, sk.PublicKey())
}

func runDerive(args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	keyType := fs.String("type", "", "key type: ed25519 | secp256k1 | rsa2048")
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	passphrase := fs.String("passphrase", "", "passphrase for the key file (empty stores plain)")
	mnemonic := fs.String("mnemonic", "", "bip39 mnemonic; empty creates a fresh one")
	mustParse(fs, args)

	kt := parseKeyTypeFlag(*keyType, *configPath)

	var sk keys.SecretKey
	var err error
	if strings.TrimSpace(*mnemonic) == "" {
		var phrase string
		phrase, sk, err = keystore.CreateMnemonic(kt)
		if err != nil {
			failf("create mnemonic: %v", err)
		}
		// The phrase goes to stdout only; it must never hit the log.
		writeStdoutf("mnemonic: %s\n", phrase)
	} else {
		sk, err = keystore.ImportMnemonic(kt, *mnemonic)
		if err != nil {
			failf("import mnemonic: %v", err)
		}
	}

	st := openStore(*configPath)
	id, err := st.Save(sk, *passphrase)
	if err != nil {
		failf("save key: %v", err)
	}
	slog.Info("key derived", "account_id", id, "key_type", kt.String())
	writeStdoutf("%s\n%s\n", id, sk.PublicKey())
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	mustParse(fs, args)

	ids, err := openStore(*configPath).List()
	if err != nil {
		failf("list keys: %v", err)
	}
	for _, id := range ids {
		writeStdoutf("%s\n", id)
	}
}

func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	key := fs.String("key", "", "public key string (name:base58)")
	mustParse(fs, args)
	if *key == "" {
		failf("inspect: -key is required")
	}

	pk, err := keys.ParsePublicKey(*key)
	if err != nil {
		failf("parse public key: %v", err)
	}
	writeStdoutf("key_type:   %s\npublic_key: %s\naccount_id: %s\n", pk.KeyType(), pk, pk.AccountID())
}

func runSign(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	account := fs.String("account", "", "account id of the stored key")
	passphrase := fs.String("passphrase", "", "passphrase for the key file")
	msg := fs.String("msg", "", "message to sign")
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	mustParse(fs, args)
	if *account == "" {
		failf("sign: -account is required")
	}

	sk, err := openStore(*configPath).Unlock(*account, *passphrase)
	if err != nil {
		failf("unlock key: %v", err)
	}
	digest := sha256.Sum256([]byte(*msg))
	sig, err := sk.Sign(digest[:])
	if err != nil {
		failf("sign: %v", err)
	}
	slog.Info("message signed", "account_id", *account, "key_type", sk.KeyType().String())
	writeStdoutf("%s\n", sig)
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	key := fs.String("key", "", "public key string (name:base58)")
	sigStr := fs.String("sig", "", "signature string (name:base58)")
	msg := fs.String("msg", "", "message that was signed")
	mustParse(fs, args)
	if *key == "" || *sigStr == "" {
		failf("verify: -key and -sig are required")
	}

	pk, err := keys.ParsePublicKey(*key)
	if err != nil {
		failf("parse public key: %v", err)
	}
	sig, err := keys.ParseSignature(*sigStr)
	if err != nil {
		failf("parse signature: %v", err)
	}
	digest := sha256.Sum256([]byte(*msg))
	if !sig.Verify(digest[:], pk) {
		fmt.Fprintln(os.Stderr, "signature INVALID")
		os.Exit(1)
	}
	writeStdoutf("signature valid\n")
}

func runRecover(args []string) {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	sigStr := fs.String("sig", "", "secp256k1 signature string")
	msg := fs.String("msg", "", "message that was signed")
	mustParse(fs, args)
	if *sigStr == "" {
		failf("recover: -sig is required")
	}

	sig, err := keys.ParseSignature(*sigStr)
	if err != nil {
		failf("parse signature: %v", err)
	}
	digest := sha256.Sum256([]byte(*msg))
	pk, err := sig.Recover(digest[:])
	if err != nil {
		failf("recover: %v", err)
	}
	writeStdoutf("%s\n%s\n", pk, pk.AccountID())
}

func mustParse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
}

func failf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format+"\n", args...); err != nil {
		os.Exit(1)
	}
	os.Exit(1)
}

func writeStdoutf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stdout, format, args...); err != nil {
		os.Exit(1)
	}
}
