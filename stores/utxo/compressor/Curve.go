package compressor

import (
	"math/big"

	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/libsv/go-bk/bec"
)

// Curve is the elliptic curve arithmetic the key codec depends on.
type Curve interface {
	// PointIsValid reports whether the serialized point lies on the curve.
	PointIsValid(point []byte) bool
	// PointCompress returns the 33 byte compressed form of a serialized point.
	PointCompress(point []byte) ([]byte, error)
	// PointDecompress returns the 65 byte uncompressed form of a 33 byte compressed point.
	PointDecompress(point []byte) ([]byte, error)
}

// Secp256k1 implements Curve with go-bk.
type Secp256k1 struct{}

func (Secp256k1) PointIsValid(point []byte) bool {
	_, err := parsePoint(point)
	return err == nil
}

func (Secp256k1) PointCompress(point []byte) ([]byte, error) {
	pubKey, err := parsePoint(point)
	if err != nil {
		return nil, err
	}

	return pubKey.SerialiseCompressed(), nil
}

func (Secp256k1) PointDecompress(point []byte) ([]byte, error) {
	pubKey, err := parsePoint(point)
	if err != nil {
		return nil, err
	}

	return pubKey.SerialiseUncompressed(), nil
}

// parsePoint parses a serialized point and checks the result is on the curve.
// bec does not reduce-check the x coordinate of a compressed point, so x >= p is rejected here.
func parsePoint(point []byte) (*bec.PublicKey, error) {
	curve := bec.S256()

	if len(point) == compressedKeySize && (point[0] == 0x02 || point[0] == 0x03) {
		if new(big.Int).SetBytes(point[1:]).Cmp(curve.Params().P) >= 0 {
			return nil, errors.NewKeyFormatError("x coordinate is not below the field prime")
		}
	}

	pubKey, err := bec.ParsePubKey(point, curve)
	if err != nil {
		return nil, err
	}

	if !curve.IsOnCurve(pubKey.X, pubKey.Y) {
		return nil, errors.NewKeyFormatError("point is not on the curve")
	}

	return pubKey, nil
}
