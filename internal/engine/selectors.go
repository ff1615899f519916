// File: internal/engine/selectors.go
package engine

import (
	"strconv"
	"strings"
)

// XPath selectors for the admin panel. The panel markup is not fully
// standardized across operator skins, so several selectors carry
// alternates joined by XPath union.
const (
	// Login page
	selUsernameInput = `//input[@name='username']`
	selPasswordInput = `//input[@name='password']`
	selLoginButton   = `//button[contains(text(), 'Login')]`

	// Main menu
	selClientListMenu = `//a[contains(text(), 'Client List')] | //span[normalize-space()='Client List']`
	selDownlineMenu   = `//ul[@id='listUser']//a[contains(., 'Down-line')] | //span[contains(text(), 'Down Line')]`

	// Down-line view
	selSearchInput  = `//input[@id='search-user']`
	selSearchButton = `//button[contains(text(), 'Search')]`
	selTableRows    = `//table//tr`

	// Transaction dialog
	selAmountInput = `//input[(@id='amount' and contains(@placeholder, 'Chips')) or contains(@placeholder, 'Deposit') or contains(@placeholder, 'Withdraw') or contains(@id, 'deposit_chips') or contains(@id, 'withdraw_chips')]`
	selUpdateButton = `//button[@type='submit' and contains(text(), 'Update')]`
)

// candidateSelector matches any element whose text mentions the query.
func candidateSelector(query string) string {
	return `//*[contains(text(), ` + xpathLiteral(query) + `)]`
}

// rowSelector addresses the nth table row (1-based) positionally.
func rowSelector(n int) string {
	return `(` + selTableRows + `)[` + strconv.Itoa(n) + `]`
}

// depositControlSelector resolves the deposit action inside a row.
func depositControlSelector(rowSel string) string {
	return rowSel + `//a[contains(@class, 'btn_deposit') and contains(text(), 'Bank Deposit')] | ` +
		rowSel + `//a[normalize-space(text())='Deposit']`
}

// withdrawControlSelector resolves the withdrawal action inside a row.
func withdrawControlSelector(rowSel string) string {
	return rowSel + `//a[contains(@class, 'btn_withdraw') and contains(text(), 'Bank Withdraw')] | ` +
		rowSel + `//a[normalize-space(text())='Withdraw']`
}

// xpathLiteral quotes an arbitrary string as an XPath string literal.
// XPath 1.0 has no escaping, so strings containing both quote kinds
// need a concat() expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, `'`)
	for i, p := range parts {
		parts[i] = `'` + p + `'`
	}
	return `concat(` + strings.Join(parts, `, "'", `) + `)`
}
