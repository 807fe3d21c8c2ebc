// Package docs is generated by swaggo/swag from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/wallet/create": {
            "post": {
                "description": "Generates a new mnemonic and key and stores them with the account API",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Create new wallet",
                "parameters": [{"description": "Wallet name and password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.GenerateRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/import": {
            "post": {
                "description": "Derives the first account of a mnemonic and stores it with the account API",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Import wallet",
                "parameters": [{"description": "Wallet name, password and mnemonic", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.GenerateRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/fetch": {
            "post": {
                "description": "Fetches a wallet by name and password, stores it encrypted and unlocks it",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Load wallet",
                "parameters": [{"description": "Wallet name and password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.FetchRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/unlock": {
            "post": {
                "description": "Decrypts the stored wallet with the password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Unlock wallet",
                "parameters": [{"description": "Password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.UnlockRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/lock": {
            "post": {
                "description": "Drops the decrypted secrets. With logout the stored wallet is removed too.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Lock wallet",
                "parameters": [{"description": "Logout flag", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/model.LockRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StatusResponse"}}}
            }
        },
        "/wallet/reset-password": {
            "post": {
                "description": "Sets a new password using the mnemonic as proof of ownership",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Reset password",
                "parameters": [{"description": "Name, mnemonic and new password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ResetPasswordRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/reveal": {
            "post": {
                "description": "Returns the private key and mnemonic when the password matches the unlock password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Reveal secrets",
                "parameters": [{"description": "Password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.UnlockRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.RevealResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/status": {
            "get": {
                "description": "Returns none, locked or unlocked with the loaded account",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Session status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StatusResponse"}}}
            }
        },
        "/wallet/balance": {
            "get": {
                "description": "Gets native and token balances. Assets that could not be read are \"unknown\". Always read from the chain.",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Get wallet balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BalanceResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/receive": {
            "get": {
                "description": "Returns the wallet address and a QR code of it",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Receive address",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ReceiveResponse"}}}
            }
        },
        "/wallet/fee": {
            "get": {
                "description": "Returns the estimate of the draft set with PUT /wallet/draft, if it is settled.",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Estimate fee",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.FeeResponse"}}}
            },
            "post": {
                "description": "Estimates the fee of a draft once.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Estimate fee",
                "parameters": [{"description": "Draft", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/model.TransferDraft"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.FeeResponse"}}}
            }
        },
        "/wallet/draft": {
            "put": {
                "description": "Records the draft being typed and schedules a debounced fee estimate",
                "consumes": ["application/json"],
                "tags": ["wallet"],
                "summary": "Update draft",
                "parameters": [{"description": "Draft", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TransferDraft"}}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/wallet/send": {
            "post": {
                "description": "Signs and broadcasts a native or token transfer. Returns once the node accepted it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Send transfer",
                "parameters": [{"description": "Asset, recipient and amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TransferDraft"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TxHandle"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/cancel": {
            "post": {
                "description": "Replaces a pending transaction with a zero-value self transfer at the same nonce",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Cancel pending transfer",
                "parameters": [{"description": "Hash of the pending transaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CancelRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TxHandle"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/pending/{hash}": {
            "delete": {
                "description": "Removes a failed pending entry from the history",
                "tags": ["wallet"],
                "summary": "Dismiss failed transfer",
                "parameters": [{"type": "string", "description": "Transaction hash", "name": "hash", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/history": {
            "get": {
                "description": "Gets pending and confirmed transactions, newest first, with filtering capability",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Get wallet transactions",
                "parameters": [
                    {"type": "string", "description": "IN or OUT", "name": "direction", "in": "query"},
                    {"type": "string", "description": "Asset symbol", "name": "asset", "in": "query"},
                    {"type": "string", "description": "Pending, Confirmed or Failed", "name": "status", "in": "query"},
                    {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "from", "in": "query"},
                    {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "to", "in": "query"},
                    {"type": "boolean", "description": "Bypass the last refreshed history", "name": "fresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.HistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/contacts": {
            "get": {
                "description": "Lists the contacts of the loaded wallet",
                "produces": ["application/json"],
                "tags": ["contacts"],
                "summary": "Address book",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Contact"}}}}
            },
            "post": {
                "description": "Adds a contact to the address book of the loaded wallet",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contacts"],
                "summary": "Address book",
                "parameters": [{"description": "Contact", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/model.ContactRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Contact"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/contacts/{id}": {
            "delete": {
                "tags": ["contacts"],
                "summary": "Delete contact",
                "parameters": [{"type": "string", "description": "Contact ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "model.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "string"}}},
        "model.GenerateRequest": {"type": "object", "properties": {"name": {"type": "string"}, "password": {"type": "string"}, "confirmPassword": {"type": "string"}, "mnemonic": {"type": "string"}}},
        "model.GenerateResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "address": {"type": "string"}}},
        "model.FetchRequest": {"type": "object", "properties": {"name": {"type": "string"}, "password": {"type": "string"}}},
        "model.UnlockRequest": {"type": "object", "properties": {"password": {"type": "string"}}},
        "model.LockRequest": {"type": "object", "properties": {"logout": {"type": "boolean"}}},
        "model.ResetPasswordRequest": {"type": "object", "properties": {"name": {"type": "string"}, "mnemonic": {"type": "string"}, "newPassword": {"type": "string"}, "confirmPassword": {"type": "string"}}},
        "model.MessageResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}}},
        "model.RevealResponse": {"type": "object", "properties": {"privateKey": {"type": "string"}, "mnemonic": {"type": "string"}}},
        "model.StatusResponse": {"type": "object", "properties": {"status": {"type": "string"}, "name": {"type": "string"}, "address": {"type": "string"}}},
        "model.AssetBalance": {"type": "object", "properties": {"asset": {"type": "string"}, "raw": {"type": "integer"}, "decimals": {"type": "integer"}, "formatted": {"type": "string"}, "known": {"type": "boolean"}, "error": {"type": "string"}}},
        "model.BalanceResponse": {"type": "object", "properties": {"address": {"type": "string"}, "native": {"$ref": "#/definitions/model.AssetBalance"}, "tokens": {"type": "object", "additionalProperties": {"$ref": "#/definitions/model.AssetBalance"}}, "nativeUsd": {"type": "string"}}},
        "model.ReceiveResponse": {"type": "object", "properties": {"address": {"type": "string"}, "QR": {"type": "string"}}},
        "model.TransferDraft": {"type": "object", "properties": {"asset": {"type": "string"}, "recipient": {"type": "string"}, "amount": {"type": "string"}}},
        "model.FeeEstimate": {"type": "object", "properties": {"asset": {"type": "string"}, "gasLimit": {"type": "integer"}, "gasPrice": {"type": "integer"}, "fee": {"type": "integer"}, "formatted": {"type": "string"}}},
        "model.FeeResponse": {"type": "object", "properties": {"available": {"type": "boolean"}, "estimate": {"$ref": "#/definitions/model.FeeEstimate"}}},
        "model.TxHandle": {"type": "object", "properties": {"hash": {"type": "string"}, "nonce": {"type": "integer"}, "submittedAt": {"type": "string"}}},
        "model.CancelRequest": {"type": "object", "properties": {"hash": {"type": "string"}}},
        "model.DisplayHistoryEntry": {"type": "object", "properties": {"hash": {"type": "string"}, "from": {"type": "string"}, "to": {"type": "string"}, "asset": {"type": "string"}, "amount": {"type": "string"}, "timestamp": {"type": "string"}, "status": {"type": "string"}, "direction": {"type": "string"}, "failureReason": {"type": "string"}}},
        "model.HistoryResponse": {"type": "object", "properties": {"address": {"type": "string"}, "transactions": {"type": "array", "items": {"$ref": "#/definitions/model.DisplayHistoryEntry"}}}},
        "model.Contact": {"type": "object", "properties": {"_id": {"type": "string"}, "walletAddress": {"type": "string"}, "contactName": {"type": "string"}, "contactAddress": {"type": "string"}}},
        "model.ContactRequest": {"type": "object", "properties": {"contactName": {"type": "string"}, "contactAddress": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EVM Wallet API",
	Description:      "Local self-custody wallet daemon for BNB Smart Chain testnet (BNB, USDT, USDC).",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
