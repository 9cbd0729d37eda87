// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

/*
Package auth protects the administrative API routes with HS256 JWT bearer
tokens.

Authentication is optional. When security.jwt_secret is empty every route is
open and RequireAdmin passes requests through. When a secret is configured,
mutating routes (POST /sequential/mine, POST /sequences and the prediction
deletes) require an Authorization: Bearer header carrying a token signed
with that secret whose role claim is "admin".

Tokens are minted offline with coursepathctl token or JWTManager.GenerateToken.

Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(jwtManager)
	r.With(mw.RequireAdmin).Post("/sequential/mine", h.Mine)
*/
package auth
