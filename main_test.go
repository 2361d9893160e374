package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/urfave/cli/v2"

	"github.com/ABMatrix/chainstate-utxo/bitcoin/btcleveldb"
)

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		" yes \n": true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"maybe\n": false,
	} {
		var prompt bytes.Buffer
		assert.Equal(t, want, confirm(strings.NewReader(input), &prompt, "Continue?"), "input %q", input)
		assert.Equal(t, "Continue? [y/n] (default n): ", prompt.String())
	}
}

func TestNetworkParams(t *testing.T) {
	assert.Equal(t, &chaincfg.MainNetParams, networkParams(false, "/home/btc/.bitcoin/chainstate"))
	assert.Equal(t, &chaincfg.TestNet3Params, networkParams(false, "/home/btc/.bitcoin/testnet3/chainstate"))
	assert.Equal(t, &chaincfg.TestNet3Params, networkParams(true, "/data/chainstate"))
}

func TestResolvePaths(t *testing.T) {
	resolve := func(args ...string) (string, string) {
		var dbPath, output string
		app := &cli.App{
			Flags: flags(),
			Action: func(c *cli.Context) error {
				dbPath, output = resolvePaths(c)
				return nil
			},
		}
		require.NoError(t, app.Run(append([]string{"chainstate-utxo"}, args...)))

		return dbPath, output
	}

	dbPath, output := resolve("--db", "/data/chainstate", "-o", "out.csv")
	assert.Equal(t, "/data/chainstate", dbPath)
	assert.Equal(t, "out.csv", output)

	dbPath, output = resolve("/data/chainstate", "dump.txt")
	assert.Equal(t, "/data/chainstate", dbPath)
	assert.Equal(t, "dump.txt", output)

	_, output = resolve("/data/chainstate")
	assert.Equal(t, defaultOutput, output)
}

func TestDumpToFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "chainstate")
	output := filepath.Join(dir, "utxodump.csv")

	key := btcleveldb.ObfuscationKey{0xb1, 0x2d, 0xce, 0xfd, 0x8f, 0x87, 0x25, 0x36}

	db, err := leveldb.OpenFile(dbPath, nil)
	require.NoError(t, err)

	require.NoError(t, db.Put(btcleveldb.ObfuscationKeyRecord, append([]byte{byte(len(key))}, key...), nil))

	coinKey := append([]byte{btcleveldb.UTXOPrefix}, bytes.Repeat([]byte{0x01}, 32)...)
	coinKey = append(coinKey, 0x00)

	// height 100, 50 BTC, P2PKH
	hash160 := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	plain := append([]byte{0x80, 0x48, 0x32, 0x00}, hash160...)
	require.NoError(t, db.Put(coinKey, key.Deobfuscate(plain), nil))
	require.NoError(t, db.Close())

	app := &cli.App{Flags: flags(), Action: run}
	require.NoError(t, app.Run([]string{"chainstate-utxo", "--nowarnings", "--quiet", dbPath, output}))

	dump, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "76a9140102030405060708090a0b0c0d0e0f101112131488ac,5000000000\n", string(dump))
}

func TestDumpRejectsBadFields(t *testing.T) {
	app := &cli.App{Flags: flags(), Action: run}
	err := app.Run([]string{"chainstate-utxo", "--nowarnings", "-f", "txid,bogus", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestDumpMissingChainstate(t *testing.T) {
	app := &cli.App{Flags: flags(), Action: run}
	err := app.Run([]string{"chainstate-utxo", "--nowarnings", "--quiet", filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.ErrorIs(t, err, btcleveldb.ErrNotChainstate)
}
