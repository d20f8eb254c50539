// Package keys encodes and decodes public keys canonically per
// algorithm family. The DER SubjectPublicKeyInfo prefixes are frozen
// byte constants: principals and signatures are defined over these
// exact encodings, so nothing here is delegated to a generic ASN.1
// serializer.
package keys
