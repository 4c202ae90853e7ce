package keystore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/povcoin/foundation/keystore"
)

const (
	success = "✓"
	failed  = "✗"
)

func TestLoadGeneratesWhenAbsent(t *testing.T) {
	t.Log("Given the need to obtain a signing key on first run.")
	{
		path := filepath.Join(t.TempDir(), "private.ecdsa")

		if _, err := os.Stat(path); err == nil {
			t.Fatalf("\t%s\tkey file should not exist yet", failed)
		}

		priv, err := keystore.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tshould be able to generate a key : %s", failed, err)
		}
		if priv == nil {
			t.Fatalf("\t%s\tshould return a non-nil key", failed)
		}
		t.Logf("\t%s\tshould generate a key when none exists.", success)

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("\t%s\tshould have written the key to disk : %s", failed, err)
		}
		t.Logf("\t%s\tshould have written the key to disk.", success)
	}
}

func TestLoadReturnsExistingKey(t *testing.T) {
	t.Log("Given the need to reuse a previously generated key across restarts.")
	{
		path := filepath.Join(t.TempDir(), "private.ecdsa")

		first, err := keystore.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tshould generate the first key : %s", failed, err)
		}

		second, err := keystore.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tshould load the existing key : %s", failed, err)
		}

		if first.D.Cmp(second.D) != 0 {
			t.Fatalf("\t%s\tshould return the same key on a second load", failed)
		}
		t.Logf("\t%s\tshould return the same key on a second load.", success)
	}
}

func TestDeleteRemovesKeyFile(t *testing.T) {
	t.Log("Given the need to reset a wallet's key between test runs.")
	{
		path := filepath.Join(t.TempDir(), "private.ecdsa")

		if _, err := keystore.Load(path); err != nil {
			t.Fatalf("\t%s\tshould generate a key : %s", failed, err)
		}

		if err := keystore.Delete(path); err != nil {
			t.Fatalf("\t%s\tshould delete the key file : %s", failed, err)
		}

		if _, err := os.Stat(path); err == nil {
			t.Fatalf("\t%s\tkey file should no longer exist", failed)
		}
		t.Logf("\t%s\tshould remove the key file.", success)

		if err := keystore.Delete(path); err != nil {
			t.Fatalf("\t%s\tdeleting an already-absent key should be a no-op : %s", failed, err)
		}
		t.Logf("\t%s\tshould tolerate deleting an already-absent key.", success)
	}
}
