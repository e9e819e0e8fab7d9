package types

const (
	// CommitmentTreeMaxLevels is the maximum number of levels of the
	// commitment tree supported by the disclose circuit.
	CommitmentTreeMaxLevels = 16
	// MRZLength is the number of characters of a TD3 machine readable zone.
	MRZLength = 88
	// FormattedMRZLength is the length of the MRZ once wrapped in the DG1 tag.
	FormattedMRZLength = 93
	// MRZPackedFields is the number of field elements of a packed MRZ.
	MRZPackedFields = 3
	// DataGroupHashesMaxLen is the SHA-256 padded size of the data group
	// hashes buffer accepted by the register circuit.
	DataGroupHashesMaxLen = 320
	// SignedAttributesLen is the length of the signed attributes (eContent).
	SignedAttributesLen = 104
	// RSAWordBits and RSAWords define the limb decomposition of RSA-2048
	// moduli and signatures.
	RSAWordBits = 64
	RSAWords    = 32
	// RevealBitmapLen is the length of the disclose circuit bitmap.
	RevealBitmapLen = 90
)
