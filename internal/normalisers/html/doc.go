// Package html converts HTML exports of the guidance document to text.
package html
