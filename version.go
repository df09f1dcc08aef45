package main

// Version is the current tunermon release
const Version = "v0.3.1"
