// Package api provides REST API handlers for HolderIndexor
// @title HolderIndexor API
// @version 1.0
// @description REST API for querying NFT holder snapshots indexed by HolderIndexor
// @contact.name API Support
// @contact.url https://github.com/goran-ethernal/HolderIndexor
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /
// @schemes http https
package api
