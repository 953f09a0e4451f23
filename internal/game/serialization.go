package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"strings"
)

// SnapshotChecksum is a deterministic digest of a snapshot, stored next to a
// save so a corrupted or hand-edited save is caught on load.
type SnapshotChecksum struct {
	Hash      string // SHA-256 of the canonical rendering
	Timestamp string
	Version   int
}

// ComputeChecksum digests the snapshot. Timestamps and the deadline-driven
// fields are excluded, so two saves of the same position hash alike.
func (s *Snapshot) ComputeChecksum() (*SnapshotChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(s.canonical())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SnapshotChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: s.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   s.Version,
	}, nil
}

// canonical renders the snapshot as text in a fixed field order.
func (s *Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%d|%d|%d\n",
		s.GameID, s.Version, s.State, s.CurrentPlayer, s.TurnNumber, s.Winner)
	fmt.Fprintf(&buf, "DICE:%d|%d|%t\n", s.Dice.D1, s.Dice.D2, s.Rolled)
	fmt.Fprintf(&buf, "BANK:%d|%d|%d\n", s.HousesLeft, s.HotelsLeft, s.FreeParking)

	for _, p := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%d|%s|%d|%d|%t|%d|%t|%t|%x|%d\n",
			p.ID, p.Name, p.Color, p.CardID, p.Balance, p.Position,
			p.InJail, p.JailTurns, p.HasJailCard, p.Bankrupt, uint64(p.Owned), p.Doubles)
	}
	for i, prop := range s.Properties {
		if prop.Owned() || prop.Level != 0 || prop.Mortgaged {
			fmt.Fprintf(&buf, "PROP:%d|%d|%d|%t\n", i, prop.Owner, prop.Level, prop.Mortgaged)
		}
	}

	fmt.Fprintf(&buf, "CHANCE:%s@%d\n", joinInts(s.ChanceOrder), s.ChancePos)
	fmt.Fprintf(&buf, "COMMUNITY:%s@%d\n", joinInts(s.CommunityOrder), s.CommunityPos)
	fmt.Fprintf(&buf, "SEATS:%s\n", joinInts(s.Seats))

	fmt.Fprintf(&buf, "TX:%s|%d|%d|%d|%d|%s|%d|%s\n",
		s.Tx.Kind, s.Tx.Player, s.Tx.Creditor, s.Tx.Tile, s.Tx.Amount, s.Tx.Deck, s.Tx.Card, s.Tx.Wait)
	// Debts settle in queue order, so they are not sorted.
	for i, d := range s.Debts {
		fmt.Fprintf(&buf, "DEBT:%d:%d|%d|%d|%s\n", i, d.Debtor, d.Creditor, d.Amount, d.Kind)
	}
	fmt.Fprintf(&buf, "RESUME:%s|%t|%s|%t\n", s.ResumeState, s.ResumeEndTurn, s.Suspended, s.HasSuspended)
	fmt.Fprintf(&buf, "QUICK:%s|%s|%d\n", s.QuickReturn, s.QuickCursor, s.Selected)
	if t := s.Trade; t != nil {
		fmt.Fprintf(&buf, "TRADE:%d|%d|%d|%x|%x|%s\n",
			t.Partner, t.Offer, t.Request, uint64(t.Give), uint64(t.Take), t.ReturnTo)
	}
	if a := s.Auction; a != nil {
		fmt.Fprintf(&buf, "AUCTION:%d|%d|%d|%t\n", a.Tile, a.Bid, a.Bidder, a.Awaiting)
	}

	st := s.Settings
	fmt.Fprintf(&buf, "SETTINGS:%d|%t|%d|%t|%t|%d|%d|%t|%s|%s|%d|%d\n",
		st.StartingMoney, st.FreeParkingPool, st.JailMaxTurns, st.AutoRent, st.CardPayments,
		st.DiceSpeed, st.Volume, st.Extension, st.Bankruptcy, st.InputTimeout,
		st.AuctionSeconds, st.AuctionIncrement)

	return buf.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

// VerifyChecksum reports whether the snapshot still matches expected.
func (s *Snapshot) VerifyChecksum(expected *SnapshotChecksum) (bool, error) {
	if expected == nil {
		return false, fmt.Errorf("no checksum to verify against")
	}
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// SerializeToBytes gob-encodes the snapshot.
func (s *Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a snapshot written by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// ValidateSerializationRoundtrip encodes and decodes s and compares checksums.
func ValidateSerializationRoundtrip(s *Snapshot) error {
	original, err := s.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := s.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	decoded, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	ok, err := decoded.VerifyChecksum(original)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("checksum mismatch after roundtrip")
	}
	return nil
}
