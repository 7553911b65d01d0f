// Package observer provides ready-made grest lifecycle subscribers.
package observer
