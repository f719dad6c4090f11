// Package loot samples rewards from a tree of weighted catalogs.
//
// A Catalog owns items and named sub-branches. A roll walks the tree from a
// starting branch, includes each level's items with a probability that
// decays level after level, and picks one candidate among everything found.
// A loot evaluation applies a list of such rolls (drops) and expands each hit
// into a stack of copies, optionally transformed by modifiers.
//
// Every random decision is drawn from an explicit RandomSource, so a seeded
// source replays the exact same rewards.
package loot
