/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/config"
	"github.com/suparena/docstore/datastore/ddb"
	"github.com/suparena/docstore/datastore/mock"
	"github.com/suparena/docstore/service"
)

// run executes args against a fresh CLI whose store lives in memory.
func run(t *testing.T, store *docstore.Store, args ...string) (string, error) {
	t.Helper()
	cli := NewCLI()
	var opened config.Config
	cli.open = func(_ context.Context, cfg config.Config) (*docstore.Store, error) {
		opened = cfg
		return store, nil
	}

	var out bytes.Buffer
	cli.rootCmd.SetOut(&out)
	cli.rootCmd.SetErr(&out)
	cli.rootCmd.SetArgs(args)
	err := cli.Execute()
	if store != nil && err == nil {
		assert.Equal(t, "docs", opened.TableName)
	}
	return out.String(), err
}

func memoryStore() *docstore.Store {
	return docstore.New(ddb.NewDynamodbDataStore(mock.New(), "docs"), time.Hour)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, nil, "version", "-o", "json")
	require.NoError(t, err)

	var info docstore.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, docstore.Version, info.Version)
}

func TestKeyCommands(t *testing.T) {
	out, err := run(t, nil, "key", "encode", "--tenant", "acme", "docs#1")
	require.NoError(t, err)
	assert.Equal(t, "acme#docs#1\n", out)

	out, err = run(t, nil, "key", "decode", "-t", "acme", "acme#docs#1")
	require.NoError(t, err)
	assert.Equal(t, "docs#1\n", out)

	_, err = run(t, nil, "key", "encode", "--tenant", "docs", "x")
	assert.ErrorContains(t, err, "reserved site id")
}

func TestSchemaCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
definitions:
  - key: status
sites:
  attributes:
    required:
      - attributeKey: status
`), 0o600))

	out, err := run(t, nil, "schema", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (1 definitions, 0 classifications)")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"sites":{"attributes":{"optional":[{"attributeKey":"region"}]}}}`), 0o600))

	out, err = run(t, nil, "schema", "check", bad)
	assert.ErrorContains(t, err, "1 problem(s) found")
	assert.Contains(t, out, "sites: attribute 'region' not found")
}

func TestAttributesListCommand(t *testing.T) {
	store := memoryStore()
	for _, k := range []string{"a", "b", "c"} {
		_, err := store.Attributes.Add(context.Background(), "acme", service.AddAttributeRequest{Key: k}, attributes.Access{})
		require.NoError(t, err)
	}

	out, err := run(t, store, "attributes", "list", "--table-name", "docs", "-t", "acme", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "STRING")
	assert.Contains(t, out, "next: ")
	assert.Contains(t, out, "| a ")
	assert.NotContains(t, out, "| c ")

	_, err = run(t, store, "attributes", "list", "-t", "acme")
	if os.Getenv("DOCSTORE_TABLE_NAME") == "" && os.Getenv("AWS_DDB_TABLE") == "" {
		assert.ErrorContains(t, err, "table name is required")
	}
}

func TestPartitionDumpCommand(t *testing.T) {
	store := memoryStore()
	_, err := store.Attributes.Add(context.Background(), "", service.AddAttributeRequest{Key: "status"}, attributes.Access{})
	require.NoError(t, err)

	out, err := run(t, store, "partition", "dump", "--table-name", "docs", "attr#status", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: attribute")
	assert.Contains(t, out, "sk: attribute")
}
