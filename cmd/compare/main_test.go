package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beerlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    domain.SelectionEntry
		wantErr bool
	}{
		{
			name: "name and url",
			arg:  "Pale Ale=https://bier.jp/itemdetail/1001",
			want: domain.SelectionEntry{Key: "Pale Ale", SourceURL: "https://bier.jp/itemdetail/1001"},
		},
		{
			name: "with image",
			arg:  "Stout=https://bier.jp/itemdetail/1002|https://bier.jp/img/1002.jpg",
			want: domain.SelectionEntry{
				Key:       "Stout",
				SourceURL: "https://bier.jp/itemdetail/1002",
				ImageURL:  "https://bier.jp/img/1002.jpg",
			},
		},
		{
			name: "url containing equals sign",
			arg:  "IPA=https://bier.jp/index.cgi?id=1",
			want: domain.SelectionEntry{Key: "IPA", SourceURL: "https://bier.jp/index.cgi?id=1"},
		},
		{name: "missing separator", arg: "https://bier.jp/itemdetail/1", wantErr: true},
		{name: "missing name", arg: "=https://bier.jp/itemdetail/1", wantErr: true},
		{name: "missing url", arg: "IPA=|https://bier.jp/img/1.jpg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEntry(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newShopServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/index.cgi", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "1":
			w.Write([]byte(`{"data":{"Price":"¥1,200","Description":"Citrus","NumInBox":4,}}`))
		case "2":
			w.Write([]byte(`{"data":{"Price":"¥350","Description":"Roasty","NumInBox":1}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/itemdetail/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<table><tr><td class="spec_column">容量</td><td class="spec_column">350ml</td></tr></table>`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCommand(t *testing.T) {
	shop := newShopServer(t)
	endpoint := "--detail-endpoint=" + shop.URL + "/index.cgi"

	t.Run("prints json results in argument order", func(t *testing.T) {
		stdout, stderr, err := execute(t, "run", endpoint, "--format", "json",
			"IPA="+shop.URL+"/itemdetail/1",
			"Stout="+shop.URL+"/itemdetail/2",
			"Missing="+shop.URL+"/itemdetail/3")
		require.NoError(t, err)

		var result domain.ComparisonResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &result))
		require.Len(t, result.Items, 3)
		assert.Equal(t, "IPA", result.Items[0].Name)
		assert.Equal(t, 4, result.Items[0].NumInBox)
		assert.Equal(t, "350ml", result.Items[1].Capacity)
		assert.True(t, result.Items[2].HasError)
		assert.Equal(t, 1, result.ErrorCount)

		assert.Contains(t, stderr, "[1/3]")
		assert.Contains(t, stderr, "[3/3]")
		assert.Contains(t, stderr, "1 of 3 products could not be fetched")
	})

	t.Run("prints a table by default", func(t *testing.T) {
		stdout, _, err := execute(t, "run", endpoint,
			"IPA="+shop.URL+"/itemdetail/1",
			"Stout="+shop.URL+"/itemdetail/2")
		require.NoError(t, err)

		assert.Contains(t, stdout, "¥1,200 (1本あたり ¥300)")
		assert.Contains(t, stdout, "Stout")
	})

	t.Run("prints cards", func(t *testing.T) {
		stdout, _, err := execute(t, "run", endpoint, "-f", "cards",
			"IPA="+shop.URL+"/itemdetail/1",
			"Stout="+shop.URL+"/itemdetail/2")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(stdout, "{\n  \"type\": \"carousel\""))
	})

	t.Run("rejects more than four products", func(t *testing.T) {
		args := []string{"run", endpoint}
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			args = append(args, name+"="+shop.URL+"/itemdetail/1")
		}

		_, _, err := execute(t, args...)
		assert.ErrorIs(t, err, domain.ErrSelectionFull)
	})

	t.Run("rejects a single product", func(t *testing.T) {
		_, _, err := execute(t, "run", endpoint, "IPA="+shop.URL+"/itemdetail/1")
		assert.ErrorIs(t, err, domain.ErrInsufficientSelection)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, _, err := execute(t, "run", "--format", "xml", "a=1", "b=2")
		assert.Error(t, err)
	})
}
