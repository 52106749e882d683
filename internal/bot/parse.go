package bot

import (
	"strconv"
	"strings"
)

// commandArgs returns the text after the command word.
func commandArgs(text string) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(rest)
}

// parseReferrer reads the inviter id from a /start payload. Anything but a
// positive user id, optionally prefixed with "ref_", yields nil.
func parseReferrer(text string) *int64 {
	payload := strings.TrimPrefix(commandArgs(text), "ref_")
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// parseCallbackID extracts the numeric suffix of prefixed callback data.
func parseCallbackID(data, prefix string) (uint, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseAmount(data, prefix string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// parseCreateCommand reads "/create_nft <bet> <prize link>".
func parseCreateCommand(text string) (int64, string, bool) {
	fields := strings.Fields(commandArgs(text))
	if len(fields) != 2 {
		return 0, "", false
	}
	bet, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || bet <= 0 {
		return 0, "", false
	}
	return bet, fields[1], true
}

func parseBet(text string) (int64, bool) {
	bet, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || bet <= 0 {
		return 0, false
	}
	return bet, true
}
