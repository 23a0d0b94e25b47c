// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEMsgpack is the media type clients send in Accept to get msgpack.
const MIMEMsgpack = "application/msgpack"

func wantsMsgpack(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEMsgpack)
}

// respond writes v as msgpack when the client asks for it, JSON otherwise.
func respond(c echo.Context, status int, v any) error {
	if !wantsMsgpack(c) {
		return c.JSON(status, v)
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(status, MIMEMsgpack, data)
}
