package circuits

// The circuits package prepares the inputs of the passport circom circuits
// and proves them with rapidsnark. The flow is:
//   1. The holder builds the register inputs from the signed document data
//      (circuits/register). The register proof shows the document is signed
//      by the public key and outputs the identity commitment, which is then
//      appended to the commitment tree.
//   2. To prove something about the passport, the holder fetches the tree,
//      compiles the disclosure policy and builds the disclose inputs
//      (circuits/disclose). The disclose proof shows the commitment is in the
//      tree and reveals the selected MRZ positions, bound to a scope and a
//      recipient address.
//
// +------------+          +--------------+          +------------+
// |  Document  |  ------> |   Register   |  ------> | Commitment |
// +------------+          +--------------+          |    tree    |
//                                                   +------------+
//                                                         |
//                                                         v
//                                                  +--------------+
//                                                  |   Disclose   |
//                                                  +--------------+
