package flags

const Verbose = `verbose`
const Quiet = `quiet`
const Plain = `plain`
const Directory = `dir`
const Force = `force`
const NoConfirm = `no-confirm`
