package chain

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forgechain/forge/foundation/ledger/signature"
)

// TxKind describes the origin of a transaction.
type TxKind string

// Set of transaction kinds recorded on the ledger.
const (
	TxKindStandard TxKind = "standard" // Signed transfer between two accounts.
	TxKindReward   TxKind = "reward"   // Mining reward minted for the block miner.
	TxKindGenesis  TxKind = "genesis"  // Opening balance seeded by the genesis block.
)

// TxStatus describes where a transaction sits in its lifecycle.
type TxStatus string

// Set of transaction statuses.
const (
	TxStatusPending   TxStatus = "pending"   // Waiting in the mempool for a block.
	TxStatusConfirmed TxStatus = "confirmed" // Recorded inside a mined block.
)

// Set of errors for transaction validation.
var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidAccount    = errors.New("account is not properly formatted")
	ErrMissingSignature  = errors.New("transaction is not signed")
	ErrInvalidSignature  = errors.New("signature does not match the sender")
	ErrSignerMismatch    = errors.New("signing key does not belong to the sender")
	ErrInvalidTransition = errors.New("only a pending transaction can be confirmed")
)

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	SenderID    AccountID `json:"sender,omitempty"` // Account sending the funds, empty for reward and genesis kinds.
	RecipientID AccountID `json:"recipient"`        // Account receiving the benefit of the transaction.
	Amount      uint64    `json:"amount"`           // Monetary value moved by this transaction.
	Kind        TxKind    `json:"kind"`             // Origin of the transaction.
	TimeStamp   uint64    `json:"timestamp"`        // Unix milliseconds the transaction was created.
	Status      TxStatus  `json:"status"`           // Lifecycle state of the transaction.
}

// NewTx constructs a standard pending transaction between two accounts.
func NewTx(senderID AccountID, recipientID AccountID, amount uint64) (Tx, error) {
	if !senderID.IsAccountID() {
		return Tx{}, fmt.Errorf("sender: %w", ErrInvalidAccount)
	}

	if !recipientID.IsAccountID() {
		return Tx{}, fmt.Errorf("recipient: %w", ErrInvalidAccount)
	}

	if amount == 0 {
		return Tx{}, ErrInvalidAmount
	}

	tx := Tx{
		SenderID:    senderID,
		RecipientID: recipientID,
		Amount:      amount,
		Kind:        TxKindStandard,
		TimeStamp:   uint64(time.Now().UTC().UnixMilli()),
		Status:      TxStatusPending,
	}

	return tx, nil
}

// NewRewardTx constructs the unsigned transaction that mints the mining
// reward for the specified beneficiary.
func NewRewardTx(beneficiaryID AccountID, reward uint64) (Tx, error) {
	if !beneficiaryID.IsAccountID() {
		return Tx{}, fmt.Errorf("beneficiary: %w", ErrInvalidAccount)
	}

	if reward == 0 {
		return Tx{}, ErrInvalidAmount
	}

	tx := Tx{
		RecipientID: beneficiaryID,
		Amount:      reward,
		Kind:        TxKindReward,
		TimeStamp:   uint64(time.Now().UTC().UnixMilli()),
		Status:      TxStatusPending,
	}

	return tx, nil
}

// CanonicalHash produces the hash that identifies this transaction. The hash
// covers the sender, recipient, amount, kind and timestamp so any change to
// those fields produces a different transaction identity. The signature and
// status are excluded, the signature is computed over this hash and the
// status changes as the transaction moves through its lifecycle.
func (tx Tx) CanonicalHash() []byte {
	data := fmt.Sprintf("%s%s%d%s%d", tx.SenderID, tx.RecipientID, tx.Amount, tx.Kind, tx.TimeStamp)
	hash := sha256.Sum256([]byte(data))

	return hash[:]
}

// HashString returns the canonical hash as a hex encoded string.
func (tx Tx) HashString() string {
	return hex.EncodeToString(tx.CanonicalHash())
}

// Sign uses the specified private key to sign the transaction. The key must
// belong to the sender recorded on the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	if tx.Kind != TxKindStandard {
		return SignedTx{}, fmt.Errorf("only %s transactions are signed", TxKindStandard)
	}

	if PublicKeyToAccountID(privateKey.PublicKey) != tx.SenderID {
		return SignedTx{}, ErrSignerMismatch
	}

	sig, err := signature.Sign(tx.CanonicalHash(), privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	signedTx := SignedTx{
		Tx:  tx,
		Sig: sig,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a transaction carrying the signature that proves the sender
// authorized it. Reward and genesis transactions carry no signature. This is
// how clients like a wallet provide transactions for inclusion into the
// ledger.
type SignedTx struct {
	Tx
	Sig hexutil.Bytes `json:"signature,omitempty"`
}

// Validate verifies the transaction is well formed and, for standard
// transactions, that the signature conforms to our standards and was produced
// by the claimed sender over this transaction's canonical hash.
func (tx SignedTx) Validate() error {
	if tx.Amount == 0 {
		return ErrInvalidAmount
	}

	if !tx.RecipientID.IsAccountID() {
		return fmt.Errorf("recipient: %w", ErrInvalidAccount)
	}

	if tx.Status != TxStatusPending && tx.Status != TxStatusConfirmed {
		return fmt.Errorf("unknown status %q", tx.Status)
	}

	switch tx.Kind {
	case TxKindStandard:
		if !tx.SenderID.IsAccountID() {
			return fmt.Errorf("sender: %w", ErrInvalidAccount)
		}

		if len(tx.Sig) == 0 {
			return ErrMissingSignature
		}

		if err := signature.VerifySignature(tx.Sig); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
		}

		address, err := signature.FromAddress(tx.CanonicalHash(), tx.Sig)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
		}

		if AccountID(address) != tx.SenderID {
			return ErrInvalidSignature
		}

	case TxKindReward, TxKindGenesis:
		if tx.SenderID != "" {
			return fmt.Errorf("%s transactions have no sender", tx.Kind)
		}

		if len(tx.Sig) != 0 {
			return fmt.Errorf("%s transactions are not signed", tx.Kind)
		}

	default:
		return fmt.Errorf("unknown kind %q", tx.Kind)
	}

	return nil
}

// FromAccount extracts the account id that signed the transaction. For
// unsigned kinds the sender recorded on the transaction is returned.
func (tx SignedTx) FromAccount() (AccountID, error) {
	if tx.Kind != TxKindStandard {
		return tx.SenderID, nil
	}

	address, err := signature.FromAddress(tx.CanonicalHash(), tx.Sig)
	return AccountID(address), err
}

// Transition moves the transaction forward through its lifecycle and returns
// the moved copy. The only legal move is pending to confirmed, taken when the
// transaction is copied into a block being mined. Transactions already part
// of chain history are never mutated.
func (tx SignedTx) Transition(status TxStatus) (SignedTx, error) {
	if tx.Status != TxStatusPending || status != TxStatusConfirmed {
		return SignedTx{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, tx.Status, status)
	}

	tx.Status = status

	return tx, nil
}

// SignatureString returns the signature as a string.
func (tx SignedTx) SignatureString() string {
	return signature.SignatureString(tx.Sig)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s:%s", tx.Kind, tx.HashString()[:8])
}

// Hash implements the merkle Hashable interface. The leaf hash of a
// transaction is its canonical hash.
func (tx SignedTx) Hash() ([]byte, error) {
	return tx.CanonicalHash(), nil
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions. Two transactions are the same when their
// canonical hashes match.
func (tx SignedTx) Equals(otherTx SignedTx) bool {
	return bytes.Equal(tx.CanonicalHash(), otherTx.CanonicalHash())
}
