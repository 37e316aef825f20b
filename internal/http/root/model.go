package root

// Greeting is the body served at the root path.
const Greeting = "Hola, Flask!"

// Path is the only route the application serves.
const Path = "/"

const contentTypeText = "text/plain; charset=utf-8"
