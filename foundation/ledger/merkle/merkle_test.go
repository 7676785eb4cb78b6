// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/forgechain/forge/foundation/ledger/merkle"
)

// Data uses the sha256 hashing algorithm for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the values using sha256.
func (d Data) Hash() ([]byte, error) {
	h := sha256.New()
	if _, err := h.Write([]byte(d.x)); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// Equals tests for equality of two pieces of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

// =============================================================================

type testCase struct {
	testCaseId int
	data       []Data
}

var table = []testCase{
	{testCaseId: 1, data: []Data{{x: "Hello"}}},
	{testCaseId: 2, data: []Data{{x: "Hello"}, {x: "Hi"}}},
	{testCaseId: 3, data: []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}}},
	{testCaseId: 4, data: []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Hola"}}},
	{testCaseId: 5, data: []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Hola"}, {x: "Salut"}}},
}

// foldRoot computes the expected merkle root with a plain iterative fold so
// the tree construction is checked against an independent implementation.
func foldRoot(data []Data) []byte {
	var level [][]byte
	for _, d := range data {
		hash, _ := d.Hash()
		level = append(level, hash)
	}

	if len(level)%2 == 1 {
		level = append(level, level[len(level)-1])
	}

	for len(level) > 1 {
		var next [][]byte
		for i := 0; i < len(level); i += 2 {
			right := i + 1
			if right == len(level) {
				right = i
			}
			sum := sha256.Sum256(append(append([]byte{}, level[i]...), level[right]...))
			next = append(next, sum[:])
		}
		level = next
	}

	return level[0]
}

// =============================================================================

func Test_NewTreeWithDefault(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		expected := foldRoot(table[i].data)
		if !bytes.Equal(tree.MerkleRoot, expected) {
			t.Errorf("[case:%d] error: expected hash equal to %v got %v", table[i].testCaseId, expected, tree.MerkleRoot)
		}
	}
}

func Test_EmptyTree(t *testing.T) {
	if _, err := merkle.NewTree([]Data{}); err == nil {
		t.Errorf("error: expected an error constructing a tree with no content")
	}
}

func Test_RebuildTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		root := append([]byte{}, tree.MerkleRoot...)
		if err := tree.Rebuild(); err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if !bytes.Equal(tree.MerkleRoot, root) {
			t.Errorf("[case:%d] error: expected rebuilt root equal to %v got %v", table[i].testCaseId, root, tree.MerkleRoot)
		}
	}
}

func Test_Values(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		values := tree.Values()
		if len(values) != len(table[i].data) {
			t.Errorf("[case:%d] error: expected %d values got %d", table[i].testCaseId, len(table[i].data), len(values))
		}
		for j, v := range values {
			if !v.Equals(table[i].data[j]) {
				t.Errorf("[case:%d] error: expected value %v got %v", table[i].testCaseId, table[i].data[j], v)
			}
		}
	}
}

func Test_VerifyTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: expected tree to be valid: %v", table[i].testCaseId, err)
		}
		tree.MerkleRoot = []byte{1}
		if err := tree.Verify(); err == nil {
			t.Errorf("[case:%d] error: expected tree to be invalid", table[i].testCaseId)
		}
	}
}

func Test_VerifyData(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		for _, d := range table[i].data {
			if err := tree.VerifyData(d); err != nil {
				t.Errorf("[case:%d] error: expected data %v to verify: %v", table[i].testCaseId, d, err)
			}
		}
		if err := tree.VerifyData(Data{x: "not in tree"}); err == nil {
			t.Errorf("[case:%d] error: expected missing data to fail verification", table[i].testCaseId)
		}
	}
}

func Test_ProofRoundTrip(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}

		for _, d := range table[i].data {
			proof, order, err := tree.Proof(d)
			if err != nil {
				t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
				continue
			}

			hash, err := d.Hash()
			if err != nil {
				t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
				continue
			}

			if err := merkle.VerifyProof(hash, tree.MerkleRoot, proof, order); err != nil {
				t.Errorf("[case:%d] error: expected proof for %v to verify: %v", table[i].testCaseId, d, err)
			}

			bad := append([]byte{}, hash...)
			bad[0] ^= 0xff
			if err := merkle.VerifyProof(bad, tree.MerkleRoot, proof, order); err == nil {
				t.Errorf("[case:%d] error: expected tampered value hash to fail the proof", table[i].testCaseId)
			}
		}

		if _, _, err := tree.Proof(Data{x: "not in tree"}); err == nil {
			t.Errorf("[case:%d] error: expected proof of missing data to fail", table[i].testCaseId)
		}
	}
}

func Test_ProofMismatchedOrder(t *testing.T) {
	tree, err := merkle.NewTree(table[3].data)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	proof, order, err := tree.Proof(table[3].data[0])
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	hash, err := table[3].data[0].Hash()
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if err := merkle.VerifyProof(hash, tree.MerkleRoot, proof, order[:len(order)-1]); err == nil {
		t.Fatalf("error: expected a proof with mismatched order length to fail")
	}
}
