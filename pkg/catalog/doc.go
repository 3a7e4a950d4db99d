/*
Package catalog holds the fixed vocabulary the wizard offers: interiors,
photographer styles, lighting presets and clutter text.

Each Set maps an option key to the descriptive text used in composition and keeps
the insertion order of its source document, which is the menu order. A Catalog is
loaded once at startup and is read-only afterwards.
*/
package catalog
