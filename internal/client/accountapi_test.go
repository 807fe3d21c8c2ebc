package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAccountClientFetchWallet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/wallet/alice", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body["password"] != "pw123456" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid password"}`))
			return
		}
		w.Write([]byte(`{"name":"alice","address":"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266","privateKey":"0xabc","mnemonic":"words"}`))
	}))
	defer srv.Close()

	c := NewAccountClient(srv.URL + "/")

	w, err := c.FetchWallet(context.Background(), "alice", "pw123456")
	require.NoError(t, err)
	require.Equal(t, "alice", w.Name)
	require.Equal(t, "0xabc", w.PrivateKey)

	_, err = c.FetchWallet(context.Background(), "alice", "wrong")
	require.True(t, model.IsKind(err, model.KindAuth))
	require.Contains(t, err.Error(), "Invalid password")
}

func TestAccountClientErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		kind   model.ErrorKind
		msg    string
	}{
		{
			name:   "duplicate name",
			status: http.StatusBadRequest,
			body:   `{"error":"Wallet name already exists"}`,
			kind:   model.KindValidation,
			msg:    "Wallet name already exists",
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"message":"Invalid mnemonic"}`,
			kind:   model.KindAuth,
			msg:    "Invalid mnemonic",
		},
		{
			name:   "server down",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			kind:   model.KindNetwork,
			msg:    "status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewAccountClient(srv.URL).CreateWallet(context.Background(), model.NewWalletRequest{Name: "alice"})
			require.True(t, model.IsKind(err, tt.kind), err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestAccountClientUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAccountClient(url).FetchWallet(context.Background(), "alice", "pw")
	require.True(t, model.IsKind(err, model.KindNetwork))
}

func TestAccountClientResetAndContacts(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/wallet/reset-password", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice", body["name"])
		require.Equal(t, "new-pw", body["newPassword"])
		w.Write([]byte(`{"message":"Password updated"}`))
	})
	mux.HandleFunc("/api/contacts/0xabc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"1","walletAddress":"0xabc","contactName":"bob","contactAddress":"0xdef"}]`))
	})
	mux.HandleFunc("/api/contacts", func(w http.ResponseWriter, r *http.Request) {
		var c model.Contact
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
		c.ID = "2"
		json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("/api/contacts/2", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/tx/0x01", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewAccountClient(srv.URL)
	ctx := context.Background()

	msg, err := c.ResetPassword(ctx, "alice", "words", "new-pw")
	require.NoError(t, err)
	require.Equal(t, "Password updated", msg)

	contacts, err := c.Contacts(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Equal(t, "bob", contacts[0].ContactName)

	created, err := c.AddContact(ctx, model.Contact{WalletAddress: "0xabc", ContactName: "carol", ContactAddress: "0x123"})
	require.NoError(t, err)
	require.Equal(t, "2", created.ID)

	require.NoError(t, c.DeleteContact(ctx, "2"))
	require.NoError(t, c.LogTransaction(ctx, "0x01"))
}
