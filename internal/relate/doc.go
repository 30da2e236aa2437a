// Package relate pairs entities that occur in the same sentence and guesses
// the relation type from keywords.
//
// The text is split naively on '.', '!' and '?'. For every sentence of at
// least 20 characters, the entities whose names appear in it (ignoring
// case) are paired in entity order, and each pair is typed by the first
// keyword bucket that matches the sentence:
//
//	"The iPhone uses Bluetooth"  ->  iPhone -USES-> Bluetooth
//
// Relationships are co-occurrence guesses. Two entities in a sentence with
// "costs" in it become PRICED_AT even when the price belongs to neither.
package relate
